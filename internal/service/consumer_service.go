package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"strings"
	"time"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/pkg/blobstore"
	"ai-chatbot-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	store      blobstore.Store
	vision     llm.VisionProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	store blobstore.Store,
	vision llm.VisionProvider,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		store:      store,
		vision:     vision,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage backfills descriptions for image attachments on one stored
// message. Non-image attachments are left alone.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	if cs.vision == nil {
		msg.Ack() // no vision model configured, nothing to backfill
		return
	}

	var payload dto.PublishAttachmentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Describing attachments for MessageId: %s", payload.MessageId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatMsg, err := uow.ChatMessageRepository().FindOne(ctx, specification.ByID{ID: payload.MessageId})
	if err != nil {
		log.Printf("[ERROR] Failed to get message %s: %v", payload.MessageId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if chatMsg == nil {
		log.Printf("[INFO] Message %s gone before description, skipping", payload.MessageId)
		msg.Ack() // Message deleted? Ack.
		return
	}

	changed := false
	for i, att := range chatMsg.Attachments {
		if att.Description != "" || !strings.HasPrefix(att.ContentType, "image/") {
			continue
		}

		data, err := cs.store.Get(ctx, att.StorageKey)
		if err != nil {
			log.Printf("[ERROR] Failed to fetch attachment %s: %v", att.StorageKey, err)
			msg.Nack()
			return
		}

		encoded := base64.StdEncoding.EncodeToString(data)
		description, err := cs.vision.Describe(ctx, encoded, "Describe this image concisely.")
		if err != nil {
			log.Printf("[ERROR] Failed to describe attachment %s: %v", att.StorageKey, err)
			msg.Nack()
			return
		}

		chatMsg.Attachments[i].Description = description
		changed = true
	}

	if !changed {
		msg.Ack()
		return
	}

	now := time.Now()
	chatMsg.UpdatedAt = &now

	if err := uow.ChatMessageRepository().Update(ctx, chatMsg); err != nil {
		log.Printf("[ERROR] Failed to update message %s: %v", payload.MessageId, err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Described %d attachments for MessageId: %s", len(chatMsg.Attachments), payload.MessageId)
	msg.Ack()
}
