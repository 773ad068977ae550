package obs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupOTel_Disabled(t *testing.T) {
	o, err := SetupOTel(context.Background(), &OTELConfig{Enable: false})
	require.NoError(t, err)
	assert.Nil(t, o.TracerProvider)
	assert.NoError(t, o.Shutdown(context.Background()))

	fields := otel.GetTextMapPropagator().Fields()
	assert.Contains(t, fields, "traceparent")
	assert.Contains(t, fields, "baggage")

	_, span := Tracer("test").Start(context.Background(), "noop")
	span.End()
}
