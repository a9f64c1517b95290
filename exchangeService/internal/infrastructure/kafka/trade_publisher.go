package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	zapLogger "github.com/gridcert/exchange/shared/logger/zap"
)

type TradeEvent struct {
	V        int       `json:"v"`
	Type     string    `json:"type"`
	ID       uuid.UUID `json:"id"`
	Created  time.Time `json:"created"`
	Volume   string    `json:"volume"`
	Price    int64     `json:"price"`
	BidID    uuid.UUID `json:"bidId"`
	AskID    uuid.UUID `json:"askId"`
	AssetID  uuid.UUID `json:"assetId"`
	BuyerID  uuid.UUID `json:"buyerId"`
	SellerID uuid.UUID `json:"sellerId"`
}

func NewTradeEvent(trade models.Trade) TradeEvent {
	return TradeEvent{
		V:        1,
		Type:     "trade",
		ID:       trade.ID,
		Created:  trade.Created,
		Volume:   trade.Volume.String(),
		Price:    trade.Price,
		BidID:    trade.BidID,
		AskID:    trade.AskID,
		AssetID:  trade.AssetID,
		BuyerID:  trade.BuyerID,
		SellerID: trade.SellerID,
	}
}

// TradePublisher sends each trade as a JSON message keyed by asset id, so
// trades of one asset keep their order within a partition.
type TradePublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	return cfg
}

func New(brokers []string, topic string) (*TradePublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("sarama.NewSyncProducer: %w", err)
	}

	return NewWithProducer(producer, topic), nil
}

func NewWithProducer(producer sarama.SyncProducer, topic string) *TradePublisher {
	return &TradePublisher{
		producer: producer,
		topic:    topic,
	}
}

func (p *TradePublisher) PublishTrades(ctx context.Context, trades []models.Trade) error {
	const op = "TradePublisher.PublishTrades"

	if len(trades) == 0 {
		return nil
	}

	messages := make([]*sarama.ProducerMessage, 0, len(trades))
	for _, trade := range trades {
		payload, err := json.Marshal(NewTradeEvent(trade))
		if err != nil {
			return fmt.Errorf("%s: marshal: %w", op, err)
		}

		messages = append(messages, &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(trade.AssetID.String()),
			Value: sarama.ByteEncoder(payload),
		})
	}

	if err := p.producer.SendMessages(messages); err != nil {
		zapLogger.Error(ctx, "publishing trades failed",
			zap.String("topic", p.topic),
			zap.Int("count", len(messages)),
			zap.Error(err),
		)
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (p *TradePublisher) Close() error {
	return p.producer.Close()
}
