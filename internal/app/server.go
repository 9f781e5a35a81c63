package app

import (
	"context"
	"net/http"

	"empower/internal/account"
	"empower/internal/config"
	"empower/internal/course"
	"empower/internal/enrollment"
	"empower/internal/menu"
	"empower/internal/payment"
	"empower/internal/session"
	"empower/internal/storage"
	"empower/internal/websocket"
	"empower/pkg/utils"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Server struct {
	Config         *config.Config
	Store          storage.Store
	CourseManager  *course.Manager
	SessionManager *session.Manager
	Ledger         *enrollment.Ledger
	Accounts       *account.Service
	Payments       *payment.Processor
	Kitchen        *menu.Kitchen
	Hub            *websocket.Hub
	Logger         *zap.Logger
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	var store storage.Store
	switch cfg.StorageDriver {
	case "memory":
		store = storage.NewMemoryStore()
	default:
		st, err := storage.Open(cfg.StoragePath)
		if err != nil {
			return nil, errors.Wrap(err, "app.NewServer")
		}
		store = st
	}

	validate := utils.NewValidator()
	courses := course.NewManager(course.DefaultCourses(), logger)
	ledger := enrollment.NewLedger(store, courses, logger)
	selected := ledger.Load(context.Background())
	logger.Info("Loaded selection", zap.Strings("courseIDs", selected))

	s := &Server{
		Config:         cfg,
		Store:          store,
		CourseManager:  courses,
		SessionManager: session.NewManager(cfg.SessionTTL, logger),
		Ledger:         ledger,
		Accounts:       account.NewService(store, validate, logger),
		Payments:       payment.NewProcessor(validate, logger),
		Kitchen:        menu.NewKitchen(validate, logger),
		Logger:         logger,
	}
	s.Hub = websocket.NewHub(websocket.Services{
		Courses:        s.CourseManager,
		Ledger:         s.Ledger,
		Accounts:       s.Accounts,
		Sessions:       s.SessionManager,
		Payments:       s.Payments,
		Kitchen:        s.Kitchen,
		ClearOnPayment: cfg.ClearOnPaymentSuccess,
	}, logger)

	return s, nil
}

// Handler routes /ws to the hub.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWs(s.Hub, w, r)
	})
	return mux
}

func (s *Server) Close() error {
	return s.Store.Close()
}
