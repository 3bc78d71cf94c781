package telegram

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoTrends/internal/finance"
)

type botServer struct {
	mu      sync.Mutex
	methods []string
	chatID  string
	caption string
	photo   []byte
}

func (b *botServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		b.methods = append(b.methods, method)
		w.Header().Set("Content-Type", "application/json")
		switch method {
		case "getMe":
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"charts","username":"charts_bot"}}`))
		case "sendPhoto":
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			b.chatID = r.FormValue("chat_id")
			b.caption = r.FormValue("caption")
			if f, _, err := r.FormFile("photo"); err == nil {
				b.photo, _ = io.ReadAll(f)
				f.Close()
			}
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
		}
	}
}

func TestPublish(t *testing.T) {
	bs := &botServer{}
	srv := httptest.NewServer(bs.handler(t))
	defer srv.Close()

	p, err := NewPublisherWithClient("TOKEN", srv.URL+"/bot%s/%s", 42, srv.Client())
	require.NoError(t, err)

	err = p.Publish(finance.Figure{Name: "BITCOIN", Caption: "BITCOIN • r=+0.42", Image: []byte("\x89PNGdata")})
	require.NoError(t, err)

	assert.Equal(t, []string{"getMe", "sendPhoto"}, bs.methods)
	assert.Equal(t, "42", bs.chatID)
	assert.Equal(t, "BITCOIN • r=+0.42", bs.caption)
	assert.Equal(t, []byte("\x89PNGdata"), bs.photo)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	long := strings.Repeat("é", 2000)
	got := truncate(long, maxCaption)
	assert.Equal(t, maxCaption, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
}
