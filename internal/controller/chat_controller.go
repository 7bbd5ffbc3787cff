package controller

import (
	"io"
	"mime/multipart"
	"net/url"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/service"
	"ai-chatbot-be/pkg/attachment"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendChat(ctx *fiber.Ctx) error
	GetAttachment(ctx *fiber.Ctx) error
	GetSignedURLs(ctx *fiber.Ctx) error
	ImageToText(ctx *fiber.Ctx) error
	CreateChatroom(ctx *fiber.Ctx) error
	ListChatrooms(ctx *fiber.Ctx) error
	GetChatroom(ctx *fiber.Ctx) error
	UpdateChatroom(ctx *fiber.Ctx) error
	DeleteChatroom(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService       service.IChatService
	chatroomService   service.IChatroomService
	attachmentService service.IAttachmentService
}

func NewChatController(
	chatService service.IChatService,
	chatroomService service.IChatroomService,
	attachmentService service.IAttachmentService,
) IChatController {
	return &chatController{
		chatService:       chatService,
		chatroomService:   chatroomService,
		attachmentService: attachmentService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chats")
	h.Use(serverutils.JwtMiddleware)
	h.Post("chat", c.SendChat)
	// Storage keys contain slashes, so the route is a wildcard rather
	// than a :param.
	h.Get("attachment/*", c.GetAttachment)
	h.Post("attachments/signed-urls", c.GetSignedURLs)
	h.Post("image-to-text", c.ImageToText)
	h.Post("new-chatroom", c.CreateChatroom)
	h.Get("chatrooms", c.ListChatrooms)
	h.Get("chatrooms/:id", c.GetChatroom)
	h.Put("chatrooms/:id", c.UpdateChatroom)
	h.Delete("delete-chatroom/:id", c.DeleteChatroom)
}

func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	userId, err := authenticatedUser(ctx)
	if err != nil {
		return err
	}

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	files, err := readMultipartFiles(ctx, "attachments")
	if err != nil {
		return err
	}

	res, err := c.chatService.SendChat(ctx.Context(), userId, &req, files)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

func (c *chatController) GetAttachment(ctx *fiber.Ctx) error {
	userId, err := authenticatedUser(ctx)
	if err != nil {
		return err
	}

	key, err := url.PathUnescape(ctx.Params("*"))
	if err != nil || key == "" {
		return apperror.InvalidFormat("invalid attachment key")
	}

	res, err := c.attachmentService.GetSignedURL(ctx.Context(), userId.String(), key)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success signed url", res))
}

func (c *chatController) GetSignedURLs(ctx *fiber.Ctx) error {
	userId, err := authenticatedUser(ctx)
	if err != nil {
		return err
	}

	var req dto.SignedURLRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.attachmentService.GetSignedURLs(ctx.Context(), userId.String(), req.StorageKeys)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success signed urls", res))
}

func (c *chatController) ImageToText(ctx *fiber.Ctx) error {
	userId, err := authenticatedUser(ctx)
	if err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		return apperror.InvalidFormat("missing image file")
	}

	file, err := readFormFile(fileHeader)
	if err != nil {
		return err
	}

	res, err := c.chatService.ImageToText(ctx.Context(), userId, file)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success image to text", res))
}

func (c *chatController) CreateChatroom(ctx *fiber.Ctx) error {
	userId, err := authenticatedUser(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateChatroomRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatroomService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create chatroom", res))
}

func (c *chatController) ListChatrooms(ctx *fiber.Ctx) error {
	userId, err := authenticatedUser(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatroomService.List(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list chatrooms", res))
}

func (c *chatController) GetChatroom(ctx *fiber.Ctx) error {
	userId, err := authenticatedUser(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.InvalidFormat("invalid chatroom id")
	}

	res, err := c.chatroomService.Get(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show chatroom", res))
}

func (c *chatController) UpdateChatroom(ctx *fiber.Ctx) error {
	userId, err := authenticatedUser(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.InvalidFormat("invalid chatroom id")
	}

	var req dto.UpdateChatroomRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatroomService.Update(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update chatroom", res))
}

func (c *chatController) DeleteChatroom(ctx *fiber.Ctx) error {
	userId, err := authenticatedUser(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.InvalidFormat("invalid chatroom id")
	}

	// Body is optional; default is a full cascade including blobs.
	req := dto.DeleteChatroomRequest{DeleteAttachments: true}
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}

	res, err := c.chatroomService.Delete(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete chatroom", res))
}

func readMultipartFiles(ctx *fiber.Ctx, field string) ([]attachment.File, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		// No multipart body at all means a text-only message.
		return nil, nil
	}

	headers := form.File[field]
	files := make([]attachment.File, 0, len(headers))
	for _, header := range headers {
		file, err := readFormFile(header)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func readFormFile(header *multipart.FileHeader) (attachment.File, error) {
	f, err := header.Open()
	if err != nil {
		return attachment.File{}, apperror.InvalidFormat("unreadable uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return attachment.File{}, apperror.InvalidFormat("unreadable uploaded file")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return attachment.File{
		Name:        header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
