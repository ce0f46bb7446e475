package messaging_test

import (
	"encoding/json"
	"testing"

	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	env, err := messaging.NewEnvelope(entity.OrderPlaced{OrderID: "o-1", Total: 20})
	require.NoError(t, err)

	payload, err := json.Marshal(env)
	require.NoError(t, err)

	decoded, err := messaging.DecodeEnvelope(payload)
	require.NoError(t, err)
	assert.Equal(t, entity.EventOrderPlaced, decoded.Type)

	var placed entity.OrderPlaced
	require.NoError(t, json.Unmarshal(decoded.Data, &placed))
	assert.Equal(t, "o-1", placed.OrderID)

	_, err = messaging.DecodeEnvelope([]byte(`{"data":{}}`))
	assert.Error(t, err)
	_, err = messaging.DecodeEnvelope([]byte(`not json`))
	assert.Error(t, err)
}
