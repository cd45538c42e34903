package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalvaropc/diagroute/internal/domain"
)

type stubClassifier struct {
	out domain.Classification
	err error
}

func (s stubClassifier) Classify(context.Context, string) (domain.Classification, error) {
	return s.out, s.err
}

func (s stubClassifier) Explain(context.Context, string) (domain.Explanation, error) {
	return domain.Explanation{Classification: s.out}, s.err
}

func TestInstrument_CountsClassifications(t *testing.T) {
	m := New()
	c := Instrument(stubClassifier{out: domain.Classification{
		Tool:       domain.ToolPlotly,
		Confidence: domain.ConfidenceHigh,
		Rule:       1,
	}}, m)

	for i := 0; i < 3; i++ {
		_, err := c.Classify(context.Background(), "bar chart of 1, 2, 3")
		require.NoError(t, err)
	}
	_, err := c.Explain(context.Background(), "bar chart of 1, 2, 3")
	require.NoError(t, err)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.Classifications.WithLabelValues("PLOTLY", "HIGH")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.RuleHits.WithLabelValues("1")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Latency))
}

func TestInstrument_CountsErrorsByKind(t *testing.T) {
	m := New()
	bad := &domain.OpError{Op: "classify.request", Kind: domain.KindInvalidRequest, Err: domain.ErrEmptyRequest}

	_, err := Instrument(stubClassifier{err: bad}, m).Classify(context.Background(), " ")
	require.ErrorIs(t, err, domain.ErrEmptyRequest)

	_, err = Instrument(stubClassifier{err: context.Canceled}, m).Classify(context.Background(), "x")
	require.Error(t, err)

	_, err = Instrument(stubClassifier{err: errors.New("boom")}, m).Explain(context.Background(), "x")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("classify", "invalid_request")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("classify", "canceled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("explain", "unknown")))
	assert.Equal(t, 0, testutil.CollectAndCount(m.Classifications))
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.Classifications.WithLabelValues("NONE", "HIGH").Inc()

	assert.Equal(t, 1, testutil.CollectAndCount(a.Classifications))
	assert.Equal(t, 0, testutil.CollectAndCount(b.Classifications))
}

func TestHandler_ServesExposition(t *testing.T) {
	m := New()
	m.Classifications.WithLabelValues("DESMOS", "MEDIUM").Inc()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `diagroute_classifications_total{confidence="MEDIUM",tool="DESMOS"} 1`), string(body))
}
