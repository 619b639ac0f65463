package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"finaudit-be/internal/repository/memory"
	"finaudit-be/pkg/grounding"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type auditCompletedMessage struct {
	ReportId    string  `json:"report_id"`
	Filename    string  `json:"filename"`
	HealthScore float64 `json:"health_score"`
}

// consumerService reacts to completed audits off the request path: it
// builds the ephemeral grounding index for the report so index failures
// never slow down or fail the analyze request.
type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	contextRepo *memory.ContextRepository
	builder     *grounding.Builder
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	contextRepo *memory.ContextRepository,
	builder *grounding.Builder,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		contextRepo: contextRepo,
		builder:     builder,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload auditCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal audit event: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Audit completed: report %s (%s), health score %v",
		payload.ReportId, payload.Filename, payload.HealthScore)

	cc, found := cs.contextRepo.Get(payload.ReportId)
	if !found {
		// Context expired or was never cached. Nothing to ground.
		log.Printf("[WARN] No cached context for report %s, skipping grounding", payload.ReportId)
		msg.Ack()
		return
	}

	index, err := cs.builder.Build(cc.Scores, cc.Metadata)
	if err != nil {
		// The index is advisory only; the persisted report is unaffected.
		log.Printf("[ERROR] Failed to build grounding index for report %s: %v", payload.ReportId, err)
		msg.Ack()
		return
	}

	log.Printf("[SUCCESS] Grounding index ready for report %s (%d facts)", payload.ReportId, index.Len())
	msg.Ack()
}
