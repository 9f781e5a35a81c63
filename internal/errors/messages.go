// file: internal/errors/messages.go

package errors

type ErrorMessage struct {
	Code    int
	Message string
}

var (
	ErrInvalidData        = ErrorMessage{Code: 1001, Message: "Invalid data"}
	ErrCourseNotFound     = ErrorMessage{Code: 1002, Message: "Course not found"}
	ErrUnauthorized       = ErrorMessage{Code: 1003, Message: "Login required"}
	ErrInvalidCredentials = ErrorMessage{Code: 1004, Message: "Invalid username or password"}
	ErrEmptySelection     = ErrorMessage{Code: 1005, Message: "No courses selected"}
	ErrDishNotFound       = ErrorMessage{Code: 1006, Message: "Dish not found"}
	ErrInternalServer     = ErrorMessage{Code: 2000, Message: "Internal server error"}
	ErrPersistence        = ErrorMessage{Code: 2001, Message: "Could not save selection"}
)

var messages = map[int]string{
	ErrInvalidData.Code:        ErrInvalidData.Message,
	ErrCourseNotFound.Code:     ErrCourseNotFound.Message,
	ErrUnauthorized.Code:       ErrUnauthorized.Message,
	ErrInvalidCredentials.Code: ErrInvalidCredentials.Message,
	ErrEmptySelection.Code:     ErrEmptySelection.Message,
	ErrDishNotFound.Code:       ErrDishNotFound.Message,
	ErrInternalServer.Code:     ErrInternalServer.Message,
	ErrPersistence.Code:        ErrPersistence.Message,
}

// GetErrorMessage returns the message for an error code.
func GetErrorMessage(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "Unknown error"
}
