package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))

	CaptchaSendTotal.WithLabelValues("register", "sent").Inc()
	require.GreaterOrEqual(t, testutil.ToFloat64(CaptchaSendTotal.WithLabelValues("register", "sent")), 1.0)
}
