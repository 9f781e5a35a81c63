package protocol

const (
	HeartbeatMessage         = "heartbeat"          // heartbeat request
	HeartbeatResponseMessage = "heartbeat_response" // heartbeat reply
	ErrorMessage             = "error"              // error reply

	RegisterMessage = "register" // register the app user
	LoginMessage    = "login"    // log in, starts a session
	LogoutMessage   = "logout"   // end the session
	SessionMessage  = "session"  // login/register reply

	CatalogMessage      = "catalog"       // list courses
	CourseDetailMessage = "course_detail" // one course with enrollment state
	MenuMessage         = "menu"          // dish catalog with category stats
	DishDetailMessage   = "dish_detail"   // one dish by name

	CustomDishMessage    = "custom_dish"    // submit the customize-your-dish form
	DishSubmittedMessage = "dish_submitted" // custom_dish reply

	EnrollMessage   = "enroll"   // add a course to the selection
	UnenrollMessage = "unenroll" // drop a course from the selection
	RemoveMessage   = "remove"   // same as unenroll, from the fee screen
	ClearMessage    = "clear"    // empty the selection
	QuoteMessage    = "quote"    // reload the selection and price it

	SelectionChangedMessage = "selection_changed" // broadcast after every change
	CheckoutMessage         = "checkout"          // submit the payment form
	PaymentProcessedMessage = "payment_processed" // checkout reply
)

type Message struct {
	Type string      `json:"type"`
	Code int         `json:"code"`
	Data interface{} `json:"data"`
}
