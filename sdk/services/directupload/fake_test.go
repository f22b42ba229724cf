// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package directupload_test

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdcc/dataverse-cli-sdk/sdk/config"
	"github.com/gdcc/dataverse-cli-sdk/sdk/services/directupload"
)

const (
	testPID       = "doi:10.5072/FK2/TEST"
	storagePrefix = "http://storage.invalid"
)

type putRecord struct {
	key           string
	received      int64
	contentLength int64
	tag           string
	apiKey        string
}

type registration struct {
	path   string
	apiKey string
	bodies []directupload.Body
}

// fakeDataverse plays the API server, the object store and the S3 API at once.
type fakeDataverse struct {
	t   *testing.T
	srv *httptest.Server

	multipartAbove int64
	putStatus      int
	registerStatus int
	registerReply  string
	putDelay       time.Duration
	// file name -> errorMessage reported by /addFiles for that entry
	refuse map[string]string

	mu            sync.Mutex
	seq           int
	ticketSizes   []int64
	puts          []putRecord
	registrations []registration
	deleted       []string
	inFlight      int
	maxInFlight   int
}

func newFake(t *testing.T) *fakeDataverse {
	t.Helper()
	f := &fakeDataverse{t: t}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeDataverse) serve(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/datasets/:persistentId/uploadurls":
		f.ticket(w, r)
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/bucket/"):
		f.put(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/datasets/:persistentId/add":
		f.register(w, r, false)
	case r.Method == http.MethodPost && r.URL.Path == "/api/datasets/:persistentId/addFiles":
		f.register(w, r, true)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/bucket/"):
		f.mu.Lock()
		f.deleted = append(f.deleted, strings.TrimPrefix(r.URL.Path, "/bucket/"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprintf(w, `{"status":"ERROR","message":"no route for %s %s"}`, r.Method, r.URL.Path)
	}
}

func (f *fakeDataverse) ticket(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, testPID, r.URL.Query().Get("persistentId"))
	assert.Equal(f.t, "token", r.Header.Get(config.APIKeyHeader))
	size, err := strconv.ParseInt(r.URL.Query().Get("size"), 10, 64)
	assert.NoError(f.t, err)

	f.mu.Lock()
	f.seq++
	key := fmt.Sprintf("10.5072/FK2/TEST/obj%03d", f.seq)
	f.ticketSizes = append(f.ticketSizes, size)
	f.mu.Unlock()

	data := map[string]any{"storageIdentifier": "s3://bucket:" + key}
	if f.multipartAbove > 0 && size > f.multipartAbove {
		data["urls"] = map[string]string{
			"2": storagePrefix + "/bucket/" + key + "?partNumber=2",
			"1": storagePrefix + "/bucket/" + key + "?partNumber=1",
		}
		data["partSize"] = f.multipartAbove
		data["abort"] = "/api/datasets/mpupload?uploadid=x&storageidentifier=" + key
		data["complete"] = "/api/datasets/mpupload?uploadid=x&storageidentifier=" + key
	} else {
		data["url"] = storagePrefix + "/bucket/" + key + "?X-Amz-Signature=abc"
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": data})
}

func (f *fakeDataverse) put(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	n, _ := io.Copy(io.Discard, r.Body)
	time.Sleep(f.putDelay)

	f.mu.Lock()
	f.inFlight--
	f.puts = append(f.puts, putRecord{
		key:           strings.TrimPrefix(r.URL.Path, "/bucket/"),
		received:      n,
		contentLength: r.ContentLength,
		tag:           r.Header.Get("x-amz-tagging"),
		apiKey:        r.Header.Get(config.APIKeyHeader),
	})
	f.mu.Unlock()

	if f.putStatus != 0 {
		w.WriteHeader(f.putStatus)
		_, _ = io.WriteString(w, "<Error><Code>AccessDenied</Code></Error>")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (f *fakeDataverse) register(w http.ResponseWriter, r *http.Request, batch bool) {
	assert.Equal(f.t, testPID, r.URL.Query().Get("persistentId"))
	if !assert.NoError(f.t, r.ParseMultipartForm(1<<20)) {
		return
	}
	jsonData := r.FormValue("jsonData")

	var bodies []directupload.Body
	if batch {
		assert.NoError(f.t, json.Unmarshal([]byte(jsonData), &bodies))
	} else {
		var b directupload.Body
		assert.NoError(f.t, json.Unmarshal([]byte(jsonData), &b))
		bodies = append(bodies, b)
	}

	f.mu.Lock()
	f.registrations = append(f.registrations, registration{
		path:   r.URL.Path,
		apiKey: r.Header.Get(config.APIKeyHeader),
		bodies: bodies,
	})
	f.mu.Unlock()

	if f.registerStatus != 0 {
		w.WriteHeader(f.registerStatus)
		_, _ = io.WriteString(w, f.registerReply)
		return
	}

	if !batch {
		writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": map[string]any{
			"files": []any{map[string]any{
				"label": bodies[0].FileName,
				"dataFile": map[string]any{
					"id":                1,
					"filename":          bodies[0].FileName,
					"storageIdentifier": bodies[0].StorageIdentifier,
				},
			}},
		}})
		return
	}

	entries := make([]any, len(bodies))
	added := 0
	for i, b := range bodies {
		if msg, ok := f.refuse[b.FileName]; ok {
			entries[i] = map[string]any{"storageIdentifier": b.StorageIdentifier, "errorMessage": msg}
			continue
		}
		added++
		entries[i] = map[string]any{
			"storageIdentifier": b.StorageIdentifier,
			"fileDetails":       map[string]any{"id": i + 1, "filename": b.FileName},
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": map[string]any{
		"Files": entries,
		"Result": map[string]any{
			"Total number of files":              len(bodies),
			"Number of files successfully added": added,
		},
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeDataverse) conf() config.Config {
	return config.Config{
		Core: config.CoreConfig{BaseURL: f.srv.URL, APIToken: "token"},
		Transfer: config.TransferConfig{
			Concurrency:       config.DefaultConcurrency,
			OrphanPolicy:      config.OrphanKeep,
			StorageURLRewrite: map[string]string{storagePrefix: f.srv.URL},
		},
	}
}

func (f *fakeDataverse) service(t *testing.T, mutate ...func(*config.Config)) *directupload.DirectUploadService {
	t.Helper()
	conf := f.conf()
	for _, m := range mutate {
		m(&conf)
	}
	svc, err := directupload.NewDirectUploadService(t.Context(), conf,
		directupload.WithHTTPClient(f.srv.Client()),
		directupload.WithLogger(log.New(io.Discard)),
	)
	require.NoError(t, err)
	return svc
}

func (f *fakeDataverse) snapshot() (puts []putRecord, regs []registration, deleted []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]putRecord(nil), f.puts...), append([]registration(nil), f.registrations...), append([]string(nil), f.deleted...)
}

func writeFixture(t *testing.T, dir, name string, size int) string {
	t.Helper()
	content := make([]byte, size)
	for i := range content {
		content[i] = byte('a' + i%26)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func md5Of(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}
