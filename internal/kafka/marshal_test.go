package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/orders-admin/internal/orders"
)

func TestChangeEventRoundTrip(t *testing.T) {
	ev := ChangeEvent("catalog-api", "req-1", orders.ResourceChanged{
		Resource: orders.ResourceProduct, ResourceID: 9, Action: orders.ActionDeleted,
	})
	assert.Equal(t, orders.EventProductDeleted, ev.EventType)
	assert.Equal(t, "9", ev.CorrelationID)
	assert.NotEmpty(t, ev.EventID)

	env, err := DecodeEnvelope(MustMarshal(ev))
	require.NoError(t, err)
	ch, err := UnwrapPayload[orders.ResourceChanged](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, int64(9), ch.ResourceID)
	assert.Equal(t, orders.ActionDeleted, ch.Action)

	h := Headers(ev)
	assert.Equal(t, "x-event-type", h[0].Key)
	assert.Equal(t, []byte(orders.EventProductDeleted), h[0].Value)
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	_, err := DecodeEnvelope([]byte("{"))
	assert.Error(t, err)
}
