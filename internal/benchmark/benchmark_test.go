package benchmark

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `
<html>
<body>
<table class="history">
	<tr><th>Date</th><th>Close</th><th>Volume</th></tr>
	<tr><td>2024-01-04</td><td>4,688.68</td><td>3,715,480,000</td></tr>
	<tr><td>2024.01.02</td><td>4,742.83</td><td>3,743,050,000</td></tr>
	<tr><td>Jan 3, 2024</td><td>4,704.81</td><td>3,950,760,000</td></tr>
	<tr><td>2024-01-05</td><td>-</td><td></td></tr>
	<tr><td>Dividend</td><td>0.5</td></tr>
	<tr><td>2024-01-04</td><td>4,697.24</td><td>3,715,480,000</td></tr>
</table>
</body>
</html>
`

func TestParse(t *testing.T) {
	series, err := Parse(strings.NewReader(samplePage))
	require.NoError(t, err)

	require.Len(t, series, 3)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), series[0].Time)
	assert.Equal(t, []float64{4742.83, 4704.81, 4697.24}, series.Values())
	assert.NoError(t, series.Validate())
}

func TestParse_NoRows(t *testing.T) {
	_, err := Parse(strings.NewReader("<html><body><p>maintenance</p></body></html>"))
	assert.Error(t, err)
}

func TestClient_Series(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "SPX", nil)
	series, err := c.Series(context.Background())
	require.NoError(t, err)
	assert.Len(t, series, 3)
	assert.Equal(t, "SPX", c.Symbol())
}

func TestClient_SeriesNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewClient(srv.URL, "SPX", nil).Series(context.Background())
	assert.ErrorContains(t, err, "HTTP 404")
}
