package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"empower/api/websocket"
	"empower/internal/account"
	"empower/internal/course"
	"empower/internal/enrollment"
	e "empower/internal/errors"
	"empower/internal/menu"
	"empower/internal/payment"
	"empower/internal/pricing"
	"empower/internal/session"
	"empower/pkg/models"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second    // write deadline
	pongWait       = 60 * time.Second    // how long to wait for a pong
	pingPeriod     = (pongWait * 9) / 10 // ping interval, must be below pongWait
	maxMessageSize = 4096                // largest accepted inbound message
)

var newline = []byte{'\n'}

const (
	CodeSuccess = 0
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the app runs on-device; every origin is local
	},
}

// Services are the collaborators the hub dispatches client intents to.
type Services struct {
	Courses  *course.Manager
	Ledger   *enrollment.Ledger
	Accounts *account.Service
	Sessions *session.Manager
	Payments *payment.Processor
	Kitchen  *menu.Kitchen

	// ClearOnPayment empties the selection after a successful checkout.
	ClearOnPayment bool
}

// Client is one connected view.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	session *session.Session

	// done is closed when the hub drops the client. send is never closed.
	done      chan struct{}
	closeOnce sync.Once
}

// Hub keeps the set of connected views and fans selection changes out to all
// of them, so every open screen renders the same selection.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	svc        Services
	logger     *zap.Logger

	// ctx is canceled when Run returns; intents are handled under it.
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(svc Services, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		svc:        svc,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run is the hub's main loop. When ctx is done it closes every connection
// and returns.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer h.cancel()
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.logger.Warn("Dropping slow client")
					h.drop(client)
				}
			}
		}
	}
}

// publish fans message out to every client, unless the hub has stopped.
func (h *Hub) publish(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	client.close()
}

// close stops the client's pumps. It is safe to call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// queue hands message to the write pump. A client whose buffer is full is
// closed rather than waited for.
func (c *Client) queue(message []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- message:
	default:
		c.hub.logger.Warn("Send buffer full, closing client")
		c.close()
	}
}

// readPump reads intents off the connection and handles them one at a time.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.close()
		if c.session != nil {
			c.hub.svc.Sessions.EndSession(c.session.ID)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("Unexpected close error", zap.Error(err))
			}
			break
		}

		var msg protocol.Message
		err = json.Unmarshal(message, &msg)
		if err != nil {
			c.hub.logger.Error("Error unmarshalling message", zap.Error(err))
			c.sendError(e.ErrInvalidData.Code, nil)
			continue
		}

		c.dispatch(c.hub.ctx, msg)
	}
}

func (c *Client) dispatch(ctx context.Context, msg protocol.Message) {
	switch msg.Type {
	case protocol.HeartbeatMessage:
		c.handleHeartbeat()
	case protocol.RegisterMessage:
		c.handleRegister(ctx, msg.Data)
	case protocol.LoginMessage:
		c.handleLogin(ctx, msg.Data)
	case protocol.LogoutMessage:
		c.handleLogout()
	case protocol.CatalogMessage:
		c.handleCatalog(msg.Data)
	case protocol.CourseDetailMessage:
		c.handleCourseDetail(msg.Data)
	case protocol.MenuMessage:
		c.handleMenu()
	case protocol.DishDetailMessage:
		c.handleDishDetail(msg.Data)
	case protocol.CustomDishMessage:
		c.handleCustomDish(ctx, msg.Data)
	case protocol.EnrollMessage:
		c.handleEnroll(ctx, msg.Data)
	case protocol.UnenrollMessage, protocol.RemoveMessage:
		c.handleRemove(ctx, msg.Data)
	case protocol.ClearMessage:
		c.handleClear(ctx)
	case protocol.QuoteMessage:
		c.handleQuote(ctx)
	case protocol.CheckoutMessage:
		c.handleCheckout(ctx, msg.Data)
	default:
		c.hub.logger.Warn("Unknown message type", zap.String("type", msg.Type))
		c.sendError(e.ErrInvalidData.Code, "unknown message type "+msg.Type)
	}
}

func (c *Client) handleHeartbeat() {
	c.reply(protocol.HeartbeatResponseMessage, "pong")
}

func (c *Client) handleRegister(ctx context.Context, data interface{}) {
	var nu account.NewUser
	if err := decode(data, &nu); err != nil {
		c.sendError(e.ErrInvalidData.Code, nil)
		return
	}

	usr, err := c.hub.svc.Accounts.Register(ctx, nu)
	if err != nil {
		var verr *account.ValidationError
		if errors.As(err, &verr) {
			c.sendError(e.ErrInvalidData.Code, verr.Fields)
			return
		}
		c.hub.logger.Error("Registration failed", zap.Error(err))
		c.sendError(e.ErrInternalServer.Code, nil)
		return
	}
	c.startSession(usr)
}

func (c *Client) handleLogin(ctx context.Context, data interface{}) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(data, &creds); err != nil {
		c.sendError(e.ErrInvalidData.Code, nil)
		return
	}

	usr, err := c.hub.svc.Accounts.Login(ctx, creds.Username, creds.Password)
	if err == account.ErrInvalidCredentials {
		c.sendError(e.ErrInvalidCredentials.Code, nil)
		return
	}
	if err != nil {
		c.hub.logger.Error("Login failed", zap.Error(err))
		c.sendError(e.ErrInternalServer.Code, nil)
		return
	}
	c.startSession(usr)
}

func (c *Client) startSession(usr models.User) {
	if c.session != nil {
		c.hub.svc.Sessions.EndSession(c.session.ID)
	}
	c.session = c.hub.svc.Sessions.CreateSession(usr)

	c.reply(protocol.SessionMessage, map[string]interface{}{
		"sessionId": c.session.ID,
		"username":  usr.Username,
	})
}

func (c *Client) handleLogout() {
	if c.session != nil {
		c.hub.svc.Sessions.EndSession(c.session.ID)
		c.session = nil
	}
	c.reply(protocol.LogoutMessage, "Logged out")
}

type courseView struct {
	models.Course
	Enrolled bool `json:"enrolled"`
}

func (c *Client) handleCatalog(data interface{}) {
	var courses []models.Course
	if category, ok := stringField(data, "category"); ok && category != "" {
		courses = c.hub.svc.Courses.ListByCategory(models.CourseCategory(category))
	} else {
		courses = c.hub.svc.Courses.ListCourses()
	}

	views := make([]courseView, 0, len(courses))
	for _, course := range courses {
		views = append(views, courseView{Course: course, Enrolled: c.hub.svc.Ledger.IsEnrolled(course.ID)})
	}
	c.reply(protocol.CatalogMessage, views)
}

func (c *Client) handleCourseDetail(data interface{}) {
	courseID, ok := stringField(data, "courseId")
	if !ok {
		c.hub.logger.Error("Invalid course ID")
		c.sendError(e.ErrInvalidData.Code, nil)
		return
	}

	course, found := c.hub.svc.Courses.GetCourse(courseID)
	if !found {
		c.hub.logger.Error("Course not found", zap.String("courseID", courseID))
		c.sendError(e.ErrCourseNotFound.Code, nil)
		return
	}
	c.reply(protocol.CourseDetailMessage, courseView{Course: course, Enrolled: c.hub.svc.Ledger.IsEnrolled(courseID)})
}

func (c *Client) handleMenu() {
	type categoryView struct {
		Category     models.DishCategory `json:"category"`
		Dishes       []models.Dish       `json:"dishes"`
		Count        int                 `json:"count"`
		AveragePrice string              `json:"averagePrice"`
	}

	var views []categoryView
	for _, category := range []models.DishCategory{models.Starter, models.Main, models.Dessert} {
		stats := menu.CategoryStats(category)
		views = append(views, categoryView{
			Category:     category,
			Dishes:       menu.ByCategory(category),
			Count:        stats.Count,
			AveragePrice: stats.AverageString(),
		})
	}
	c.reply(protocol.MenuMessage, views)
}

func (c *Client) handleDishDetail(data interface{}) {
	name, ok := stringField(data, "dish")
	if !ok {
		c.sendError(e.ErrInvalidData.Code, nil)
		return
	}
	dish, found := menu.Find(name)
	if !found {
		c.sendError(e.ErrDishNotFound.Code, nil)
		return
	}
	c.reply(protocol.DishDetailMessage, dish)
}

func (c *Client) handleCustomDish(ctx context.Context, data interface{}) {
	var form menu.CustomDish
	if err := decode(data, &form); err != nil {
		c.sendError(e.ErrInvalidData.Code, nil)
		return
	}

	ack, err := c.hub.svc.Kitchen.Submit(ctx, form)
	if err != nil {
		var ferr *menu.FormError
		switch {
		case errors.As(err, &ferr):
			c.sendError(e.ErrInvalidData.Code, ferr.Fields)
		case errors.Is(err, menu.ErrUnknownDish):
			c.sendError(e.ErrDishNotFound.Code, nil)
		default:
			c.hub.logger.Error("Dish submission failed", zap.Error(err))
			c.sendError(e.ErrInternalServer.Code, nil)
		}
		return
	}
	c.reply(protocol.DishSubmittedMessage, ack)
}

func (c *Client) handleEnroll(ctx context.Context, data interface{}) {
	if !c.requireSession() {
		return
	}
	courseID, ok := stringField(data, "courseId")
	if !ok {
		c.sendError(e.ErrInvalidData.Code, nil)
		return
	}

	if _, err := c.hub.svc.Ledger.Enroll(ctx, courseID); err != nil {
		c.sendLedgerError(err)
		return
	}
	c.hub.publish(c.hub.selectionMessage())
}

func (c *Client) handleRemove(ctx context.Context, data interface{}) {
	if !c.requireSession() {
		return
	}
	courseID, ok := stringField(data, "courseId")
	if !ok {
		c.sendError(e.ErrInvalidData.Code, nil)
		return
	}

	if _, err := c.hub.svc.Ledger.Remove(ctx, courseID); err != nil {
		c.sendLedgerError(err)
		return
	}
	c.hub.publish(c.hub.selectionMessage())
}

func (c *Client) handleClear(ctx context.Context) {
	if !c.requireSession() {
		return
	}
	if err := c.hub.svc.Ledger.Clear(ctx); err != nil {
		c.sendLedgerError(err)
		return
	}
	c.hub.publish(c.hub.selectionMessage())
}

// handleQuote is sent when a pricing screen becomes active: it reloads the
// selection from the store and prices it for this client only.
func (c *Client) handleQuote(ctx context.Context) {
	if !c.requireSession() {
		return
	}
	c.hub.svc.Ledger.Load(ctx)
	c.queue(c.hub.selectionMessage())
}

func (c *Client) handleCheckout(ctx context.Context, data interface{}) {
	if !c.requireSession() {
		return
	}
	var card payment.Card
	if err := decode(data, &card); err != nil {
		c.sendError(e.ErrInvalidData.Code, nil)
		return
	}

	receipt, err := c.hub.svc.Payments.Submit(ctx, c.hub.svc.Ledger.Checkout(), card)
	if err != nil {
		var ferr *payment.FormError
		switch {
		case errors.As(err, &ferr):
			c.sendError(e.ErrInvalidData.Code, ferr.Fields)
		case err == payment.ErrEmptySelection:
			c.sendError(e.ErrEmptySelection.Code, nil)
		default:
			c.hub.logger.Error("Checkout failed", zap.Error(err))
			c.sendError(e.ErrInternalServer.Code, nil)
		}
		return
	}
	c.reply(protocol.PaymentProcessedMessage, receipt)

	if c.hub.svc.ClearOnPayment {
		if err := c.hub.svc.Ledger.Clear(ctx); err != nil {
			c.sendLedgerError(err)
			return
		}
		c.hub.publish(c.hub.selectionMessage())
	}
}

func (c *Client) requireSession() bool {
	if c.session == nil || !c.hub.svc.Sessions.Touch(c.session.ID) {
		c.session = nil
		c.sendError(e.ErrUnauthorized.Code, nil)
		return false
	}
	return true
}

func (c *Client) sendLedgerError(err error) {
	switch {
	case errors.Is(err, enrollment.ErrUnknownCourse):
		c.sendError(e.ErrCourseNotFound.Code, nil)
	case enrollment.IsPersistence(err):
		c.sendError(e.ErrPersistence.Code, nil)
	default:
		c.hub.logger.Error("Ledger operation failed", zap.Error(err))
		c.sendError(e.ErrInternalServer.Code, nil)
	}
}

func (c *Client) sendError(code int, detail interface{}) {
	data := map[string]interface{}{"message": e.GetErrorMessage(code)}
	if detail != nil {
		data["detail"] = detail
	}
	c.queue(marshalMessage(protocol.Message{
		Type: protocol.ErrorMessage,
		Code: code,
		Data: data,
	}))
}

func (c *Client) reply(typ string, data interface{}) {
	c.queue(marshalMessage(protocol.Message{Type: typ, Code: CodeSuccess, Data: data}))
}

// selection is the payload of selection_changed.
type selection struct {
	CourseIDs []string     `json:"courseIds"`
	Quote     pricing.View `json:"quote"`
}

func (h *Hub) selectionMessage() []byte {
	handoff := h.svc.Ledger.Checkout()
	return marshalMessage(protocol.Message{
		Type: protocol.SelectionChangedMessage,
		Data: selection{CourseIDs: handoff.CourseIDs, Quote: handoff.Quote.View()},
	})
}

func stringField(data interface{}, key string) (string, bool) {
	fields, ok := data.(map[string]interface{})
	if !ok {
		return "", false
	}
	s, ok := fields[key].(string)
	return s, ok
}

// decode converts a generic JSON payload into v.
func decode(data interface{}, v interface{}) error {
	if data == nil {
		return errors.New("missing data")
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func marshalMessage(msg protocol.Message) []byte {
	data, _ := json.Marshal(msg)
	return data
}

// ServeWs upgrades the request and starts the client's pumps. The new client
// first receives the current selection.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Error("Error upgrading connection", zap.Error(err))
		return
	}

	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
		done: make(chan struct{}),
	}
	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}
	client.queue(hub.selectionMessage())

	go client.readPump()
	go client.writePump()
}

// writePump pushes queued messages to the connection. Messages queued at the
// same time share one frame, separated by newlines.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write(newline)
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
