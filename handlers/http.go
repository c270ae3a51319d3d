package handlers

import (
	stderrors "errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"sign-relay/auth"
	"sign-relay/domain"
	"sign-relay/errors"
	"sign-relay/repositories"
	"sign-relay/services"
	"sign-relay/translation"
)

// HTTPHandler serves the REST surface: accounts, contacts, history and
// translation. Websocket traffic lives in WSHandler.
type HTTPHandler struct {
	log        *slog.Logger
	auth       services.IAuthService
	messages   repositories.IMessageRepository
	translator translation.ITranslator
}

func NewHTTPHandler(
	log *slog.Logger,
	authService services.IAuthService,
	messages repositories.IMessageRepository,
	translator translation.ITranslator,
) *HTTPHandler {
	return &HTTPHandler{
		log:        log,
		auth:       authService,
		messages:   messages,
		translator: translator,
	}
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *HTTPHandler) Register(c *fiber.Ctx) error {
	var req auth.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid payload")
	}

	account, err := h.auth.Register(c.UserContext(), req)
	if err != nil {
		switch {
		case stderrors.Is(err, errors.ErrDuplicateID):
			return fiber.NewError(fiber.StatusBadRequest, "Phone already registered")
		case stderrors.Is(err, errors.ErrInvalidRequest):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		default:
			h.log.Error("Registration failed", "error", err)
			return fiber.ErrInternalServerError
		}
	}
	return c.Status(fiber.StatusCreated).JSON(account)
}

func (h *HTTPHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid payload")
	}

	account, err := h.auth.Login(c.UserContext(), req.Phone, req.Password)
	if err != nil {
		if stderrors.Is(err, errors.ErrInvalidCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
		}
		h.log.Error("Login failed", "error", err)
		return fiber.ErrInternalServerError
	}
	return c.JSON(account)
}

func (h *HTTPHandler) Search(c *fiber.Ctx) error {
	profile, err := h.auth.Find(c.UserContext(), c.Params("phone"))
	if err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		h.log.Error("Search failed", "error", err)
		return fiber.ErrInternalServerError
	}
	return c.JSON(profile)
}

// Recents lists everyone the caller has exchanged at least one message
// with, most recently created accounts included. Always an array, never
// null.
func (h *HTTPHandler) Recents(c *fiber.Ctx) error {
	peers, err := h.messages.RecentPeers(c.UserContext(), c.Params("phone"))
	if err != nil {
		h.log.Error("Recent peers lookup failed", "error", err)
		return fiber.ErrInternalServerError
	}

	profiles := lo.Map(peers, func(user repositories.User, _ int) services.Profile {
		return services.Profile{Username: user.Username, Phone: user.Phone, Role: user.Role}
	})
	if profiles == nil {
		profiles = []services.Profile{}
	}
	return c.JSON(profiles)
}

func (h *HTTPHandler) History(c *fiber.Ctx) error {
	messages, err := h.messages.History(c.UserContext(), c.Params("phone"), c.Params("peer"))
	if err != nil {
		h.log.Error("History lookup failed", "error", err)
		return fiber.ErrInternalServerError
	}

	entries := lo.Map(messages, func(msg domain.Message, _ int) domain.HistoryEntry {
		return domain.HistoryEntry{Sender: msg.Sender, Text: msg.Text}
	})
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return c.JSON(entries)
}

func (h *HTTPHandler) Translate(c *fiber.Ctx) error {
	text := c.Query("text")
	if text == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing text parameter")
	}

	sequence, err := h.translator.Translate(c.UserContext(), text)
	if err != nil {
		h.log.Error("Translation failed", "error", err)
		return fiber.ErrInternalServerError
	}
	if sequence == nil {
		sequence = []translation.Segment{}
	}
	return c.JSON(fiber.Map{"sequence": sequence})
}
