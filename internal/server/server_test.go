package server

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"ai-chatbot-be/internal/bootstrap"
	"ai-chatbot-be/internal/config"
	"ai-chatbot-be/internal/handler"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/websocket"
	"ai-chatbot-be/pkg/attachment"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type stubAuthController struct{}

func (stubAuthController) RegisterRoutes(r fiber.Router)   {}
func (stubAuthController) Signup(ctx *fiber.Ctx) error     { return nil }
func (stubAuthController) Login(ctx *fiber.Ctx) error      { return nil }
func (stubAuthController) Logout(ctx *fiber.Ctx) error     { return nil }
func (stubAuthController) AuthStatus(ctx *fiber.Ctx) error { return nil }

type stubChatController struct {
	received int
}

func (s *stubChatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chats/chat", s.SendChat)
}

func (s *stubChatController) SendChat(ctx *fiber.Ctx) error {
	s.received = len(ctx.Body())
	return ctx.JSON(serverutils.SuccessResponse("ok", s.received))
}

func (s *stubChatController) GetAttachment(ctx *fiber.Ctx) error  { return nil }
func (s *stubChatController) GetSignedURLs(ctx *fiber.Ctx) error  { return nil }
func (s *stubChatController) ImageToText(ctx *fiber.Ctx) error    { return nil }
func (s *stubChatController) CreateChatroom(ctx *fiber.Ctx) error { return nil }
func (s *stubChatController) ListChatrooms(ctx *fiber.Ctx) error  { return nil }
func (s *stubChatController) GetChatroom(ctx *fiber.Ctx) error    { return nil }
func (s *stubChatController) UpdateChatroom(ctx *fiber.Ctx) error { return nil }
func (s *stubChatController) DeleteChatroom(ctx *fiber.Ctx) error { return nil }

func newTestServer(t *testing.T, bodyLimit int, chat *stubChatController) *fiber.App {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Port = "0"
	cfg.App.CorsAllowedOrigins = "http://localhost:5173"
	cfg.App.BodyLimit = bodyLimit

	hub := websocket.NewHub(nil, nopLogger{})
	container := &bootstrap.Container{
		AuthController:      stubAuthController{},
		ChatController:      chat,
		NotificationHandler: handler.NewNotificationHandler(hub, "test-secret", nopLogger{}),
		WebSocketHub:        hub,
	}

	return New(cfg, container).GetApp()
}

// Two files each under the per-file ceiling must reach the handler even
// though together they exceed a single file's limit; only the pipeline's
// per-file check may reject uploads.
func TestBodyLimitAdmitsMultiFileBatch(t *testing.T) {
	chat := &stubChatController{}
	app := newTestServer(t, 64<<20, chat)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("chatroom_id", uuid.NewString()); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		fw, err := w.CreateFormFile("attachments", fmt.Sprintf("clip-%d.bin", i))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(bytes.Repeat([]byte{0xA5}, 8<<20)); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()

	req := httptest.NewRequest(fiber.MethodPost, "/api/chats/chat", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 for a batch of two 8 MiB files", resp.StatusCode)
	}
	if chat.received == 0 {
		t.Error("handler never saw the request body")
	}
}

func TestBodyLimitConfiguration(t *testing.T) {
	app := newTestServer(t, 32<<20, &stubChatController{})
	if got := app.Config().BodyLimit; got != 32<<20 {
		t.Errorf("BodyLimit = %d, want the configured %d", got, 32<<20)
	}
	if app.Config().BodyLimit < 2*attachment.MaxFileSize {
		t.Error("body cap must leave room for more than one maximum-size file")
	}

	// Zero config falls back to a batch-sized default.
	fallback := newTestServer(t, 0, &stubChatController{})
	if got := fallback.Config().BodyLimit; got != 64<<20 {
		t.Errorf("fallback BodyLimit = %d, want %d", got, 64<<20)
	}
}
