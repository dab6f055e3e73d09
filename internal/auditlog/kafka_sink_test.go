package auditlog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"fieldstock/pkg/models"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKafkaSinkPublishesEvent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event models.AuditLog
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.EventID != "evt-1" || event.Action != "accept" {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	sink := NewKafkaSink(producer, "inventory-audit", zap.NewNop())
	err := sink.Write(context.Background(), models.AuditLog{
		EventID:      "evt-1",
		ResourceID:   3,
		ResourceType: "warehouse_transfer",
		Action:       "accept",
	})

	require.NoError(t, err)
	require.NoError(t, sink.Close())
}

func TestKafkaSinkReturnsProducerError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	sink := NewKafkaSink(producer, "inventory-audit", zap.NewNop())
	err := sink.Write(context.Background(), models.AuditLog{EventID: "evt-2"})

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, sink.Close())
}
