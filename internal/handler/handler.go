package handler

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/locales/vi"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	vi_translations "github.com/go-playground/validator/v10/translations/vi"
	"github.com/tiemnho-dev/shift-roster/backend/internal/analytics"
	"github.com/tiemnho-dev/shift-roster/backend/internal/config"
	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
	"github.com/tiemnho-dev/shift-roster/backend/internal/guard"
	"github.com/tiemnho-dev/shift-roster/backend/internal/holiday"
	"github.com/tiemnho-dev/shift-roster/backend/internal/notify"
	"github.com/tiemnho-dev/shift-roster/backend/internal/repository"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	repository *repository.Repository
	translator ut.Translator
	guard      guard.Guard
	publisher  notify.Publisher
	holidays   holiday.Lookup
	laborCost  *analytics.Calculator
	location   *time.Location

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, g guard.Guard, publisher notify.Publisher, holidays holiday.Lookup) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// 校验错误信息中使用 json 字段名，前端可以直接对应到表单
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	vi := vi.New()
	uni := ut.New(vi, vi)
	trans, _ := uni.GetTranslator("vi")
	if err := vi_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	laborCost := analytics.NewCalculator(analytics.Rates{
		FullTime: cfg.LaborCost.FullTimeRate,
		Casual:   cfg.LaborCost.CasualRate,
	}, cfg.LaborCost.DefaultRevenue)

	return &Handler{
		validate:   validate,
		config:     cfg,
		repository: repo,
		translator: trans,
		guard:      g,
		publisher:  publisher,
		holidays:   holidays,
		laborCost:  laborCost,
		location:   cfg.Location(),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.config.App.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	h.Mux.Use(middleware.RequestID)
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	managerOnly := h.RequiredRole([]domain.Role{domain.RoleManager})

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo)
		r.Use(h.preventInactiveEmployee)

		r.Route("/my-info", func(r chi.Router) {
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Get("/employees", h.GetAllEmployees)

		r.Route("/shift-preferences", func(r chi.Router) {
			r.Get("/", h.GetShiftPreferences)
			r.Post("/", h.SubmitShiftPreference)
			r.Put("/", h.UpdateShiftPreference)
			r.Delete("/", h.DeleteShiftPreference)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(managerOnly)
				r.Use(h.shiftPreference)
				r.Post("/approve", h.ApproveShiftPreference)
				r.Post("/reject", h.RejectShiftPreference)
			})
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.GetShifts)
			r.With(managerOnly).Post("/", h.CreateShift)
			r.With(managerOnly).Put("/", h.UpdateShift)
			r.With(managerOnly).Delete("/", h.DeleteShift)
		})

		r.Route("/revenue-estimates", func(r chi.Router) {
			r.Get("/", h.GetRevenueEstimates)
			r.With(managerOnly).Post("/", h.UpsertRevenueEstimate)
			r.With(managerOnly).Put("/", h.BulkUpsertRevenueEstimates)
			r.With(managerOnly).Delete("/", h.DeleteRevenueEstimate)
		})

		r.With(managerOnly).Get("/labor-cost", h.GetLaborCost)
		r.Get("/holidays", h.GetHolidays)
	})
}
