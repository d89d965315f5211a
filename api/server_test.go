package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/transmission-rest/status"
	"github.com/s0up4200/transmission-rest/transmission"
)

const listingHeader = "ID     Done       Have  ETA           Up    Down  Ratio  Status       Name"

// fakeRunner returns canned transmission-remote output
type fakeRunner struct {
	output string
	err    error
	delay  time.Duration
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("signal: killed")
		}
	}
	return []byte(f.output), f.err
}

func newTestServer(t *testing.T, runner transmission.Runner, maxRatio float64, timeout time.Duration) *httptest.Server {
	t.Helper()

	remote, err := transmission.NewRemote(nil, timeout, runner, zerolog.Nop())
	require.NoError(t, err)

	srv := NewServer(status.NewTranslator(remote, maxRatio, zerolog.Nop()), zerolog.Nop())
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func dataRow(id, done, name string) string {
	line := []byte(strings.Repeat(" ", 70))
	copy(line[4-len(id):], id)
	copy(line[7:], done)
	copy(line[12:], "  3.61 GB")
	copy(line[24:], "Unknown")
	copy(line[34:], "   0.0")
	copy(line[42:], "   0.0")
	copy(line[50:], " 0.51")
	copy(line[57:], "Idle")
	return string(line) + name
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestStatusEndpoint(t *testing.T) {
	row := dataRow("1", "100%", "Approaching.the.Unknown.2016.1080p.WEB-DL")
	require.GreaterOrEqual(t, len(row), 80)

	ts := newTestServer(t, &fakeRunner{output: listingHeader + "\n" + row + "\n"}, 2.5, time.Second)

	resp, body := get(t, ts.URL+DefaultPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var doc status.Document
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, status.TypeStatus, doc.Type)
	assert.Equal(t, 1, doc.Count)
	assert.Equal(t, 2.5, doc.MaxRatio)
	require.Len(t, doc.Slots, 1)
	assert.Equal(t, status.Slot{
		ID:     "1",
		Done:   "100%",
		Have:   "3.61 GB",
		ETA:    "Unknown",
		Up:     "0.0",
		Down:   "0.0",
		Ratio:  "0.51",
		Status: "Idle",
		Name:   "Approaching.the.Unknown.2016.1080p.WEB-DL",
	}, doc.Slots[0])

	// slot ids stay numeric on the wire
	assert.Contains(t, string(body), `"slot":1`)
}

func TestStatusEndpointAnyPrefix(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{output: listingHeader + "\n"}, 0, time.Second)

	resp, body := get(t, ts.URL+"/proxy/prefix"+DefaultPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"type":"status","slots":[],"count":0,"maxratio":0}`, string(body))
}

func TestStatusEndpointEscaping(t *testing.T) {
	name := `He said "hi" \ and left` + "\x01"
	ts := newTestServer(t, &fakeRunner{output: dataRow("1", "5%", name)}, 0, time.Second)

	resp, body := get(t, ts.URL+DefaultPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc status.Document
	require.NoError(t, json.Unmarshal(body, &doc))
	require.Len(t, doc.Slots, 1)
	assert.Equal(t, strings.TrimSpace(name), doc.Slots[0].Name)
}

func TestCommandNotFound(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{output: "bash: transmission-remote: command not found"}, 0, time.Second)

	resp, body := get(t, ts.URL+DefaultPath)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"type":"error","data":"The transmission-remote command could not be found","maxratio":0}`, string(body))
}

func TestErrorDocumentCarriesMaxRatio(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{output: "sh: transmission-remote: command not found"}, 2.5, time.Second)

	_, body := get(t, ts.URL+DefaultPath)

	var doc status.Document
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.True(t, doc.IsError())
	assert.Equal(t, 2.5, doc.MaxRatio)
}

func TestCommandTimeout(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{output: listingHeader, delay: 5 * time.Second}, 0, 50*time.Millisecond)

	resp, body := get(t, ts.URL+DefaultPath)
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)

	var doc status.Document
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, transmission.MessageCommandTimeout, doc.Data)
}

func TestOtherPathsForbidden(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{}, 0, time.Second)

	for _, path := range []string{"/favicon.ico", "/", "/api/v1/transmission-rest/extra", "/api/v1/transmission"} {
		t.Run(path, func(t *testing.T) {
			resp, body := get(t, ts.URL+path)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			assert.Empty(t, body)
		})
	}
}

func TestPostRejected(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{}, 0, time.Second)

	for _, path := range []string{DefaultPath, "/anything"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(`{"slot":1}`))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var doc status.Document
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
			assert.Equal(t, badPostMessage, doc.Data)
		})
	}
}

func TestOtherMethodsNotAllowed(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{}, 0, time.Second)

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodHead} {
		t.Run(method, func(t *testing.T) {
			req, err := http.NewRequest(method, ts.URL+DefaultPath, nil)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
			assert.Equal(t, "GET, POST", resp.Header.Get("Allow"))
		})
	}
}

func TestFilterParameter(t *testing.T) {
	output := listingHeader + "\n" +
		dataRow("1", "100%", "alpha") + "\n" +
		dataRow("2", "40%", "beta") + "\n" +
		dataRow("3", "100%", "gamma") + "\n"
	ts := newTestServer(t, &fakeRunner{output: output}, 1.0, time.Second)

	t.Run("matching slots", func(t *testing.T) {
		resp, body := get(t, ts.URL+DefaultPath+"?filter="+url.QueryEscape(`percentDone() == 100.0`))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var doc status.Document
		require.NoError(t, json.Unmarshal(body, &doc))
		assert.Equal(t, 2, doc.Count)
		require.Len(t, doc.Slots, 2)
		assert.Equal(t, "alpha", doc.Slots[0].Name)
		assert.Equal(t, "gamma", doc.Slots[1].Name)
	})

	t.Run("case insensitive helpers", func(t *testing.T) {
		for _, expression := range []string{
			`containsFold(Name, "ET")`,
			`hasPrefixFold(Name, "BE")`,
			`hasSuffixFold(Name, "TA")`,
			`Name contains "et"`,
			`Name startsWith "be"`,
		} {
			resp, body := get(t, ts.URL+DefaultPath+"?filter="+url.QueryEscape(expression))
			require.Equal(t, http.StatusOK, resp.StatusCode, expression)

			var doc status.Document
			require.NoError(t, json.Unmarshal(body, &doc))
			require.Len(t, doc.Slots, 1, expression)
			assert.Equal(t, "beta", doc.Slots[0].Name, expression)
		}
	})

	t.Run("invalid expression", func(t *testing.T) {
		resp, body := get(t, ts.URL+DefaultPath+"?filter="+url.QueryEscape(`Name ==`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var doc status.Document
		require.NoError(t, json.Unmarshal(body, &doc))
		assert.True(t, doc.IsError())
		assert.Contains(t, doc.Data, "compilation error")
	})
}

func TestConcurrentRequests(t *testing.T) {
	var rows []string
	rows = append(rows, listingHeader)
	for i := 1; i <= 25; i++ {
		rows = append(rows, dataRow(fmt.Sprint(i), "100%", fmt.Sprintf("torrent number %d with \"quotes\"", i)))
	}
	ts := newTestServer(t, &fakeRunner{output: strings.Join(rows, "\n"), delay: 20 * time.Millisecond}, 2.5, 5*time.Second)

	const clients = 32
	var wg sync.WaitGroup
	errs := make(chan error, clients)

	for range clients {
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp, err := http.Get(ts.URL + DefaultPath)
			if err != nil {
				errs <- err
				return
			}
			defer resp.Body.Close()

			var doc status.Document
			if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
				errs <- err
				return
			}
			if doc.Count != 25 || len(doc.Slots) != 25 || doc.MaxRatio != 2.5 {
				errs <- fmt.Errorf("unexpected document: count=%d slots=%d maxratio=%v", doc.Count, len(doc.Slots), doc.MaxRatio)
				return
			}
			for i, slot := range doc.Slots {
				want := fmt.Sprintf("torrent number %d with \"quotes\"", i+1)
				if slot.Name != want {
					errs <- fmt.Errorf("slot %d name %q, want %q", i, slot.Name, want)
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusCode(status.Unavailable("x", "y", nil)))
	assert.Equal(t, http.StatusGatewayTimeout, statusCode(status.Timeout("x", "y", nil)))
	assert.Equal(t, http.StatusBadGateway, statusCode(fmt.Errorf("boom")))
}
