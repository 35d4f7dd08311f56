// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package githubstore

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/riskful/grouplist/lib/github"
	"github.com/riskful/grouplist/lib/secret"
	"github.com/riskful/grouplist/lib/versionstore"
	"github.com/riskful/grouplist/lib/versionstore/storetest"
)

// fakeRepository serves the contents API for a single repository and
// enforces blob SHA preconditions the way GitHub does.
type fakeRepository struct {
	mu      sync.Mutex
	files   map[string][]byte
	commits []string
	// failWith, when non-zero, is returned for every request.
	failWith int
}

func blobSHA(content []byte) string {
	hash := sha1.New()
	fmt.Fprintf(hash, "blob %d\x00", len(content))
	hash.Write(content)
	return hex.EncodeToString(hash.Sum(nil))
}

func writeError(writer http.ResponseWriter, status int, message string) {
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(map[string]string{"message": message})
}

func (repository *fakeRepository) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.failWith != 0 {
		writeError(writer, repository.failWith, "Server Error")
		return
	}

	const prefix = "/repos/owner/repo/contents/"
	if !strings.HasPrefix(request.URL.Path, prefix) {
		writeError(writer, http.StatusNotFound, "Not Found")
		return
	}
	path := strings.TrimPrefix(request.URL.Path, prefix)
	current, exists := repository.files[path]

	switch request.Method {
	case http.MethodGet:
		if !exists {
			writeError(writer, http.StatusNotFound, "Not Found")
			return
		}
		json.NewEncoder(writer).Encode(github.FileContent{
			Type:     "file",
			Encoding: "base64",
			Path:     path,
			Content:  base64.StdEncoding.EncodeToString(current),
			SHA:      blobSHA(current),
		})
	case http.MethodPut:
		var put github.PutContentsRequest
		if err := json.NewDecoder(request.Body).Decode(&put); err != nil {
			writeError(writer, http.StatusBadRequest, "Problems parsing JSON")
			return
		}
		switch {
		case put.SHA == "" && exists:
			writeError(writer, http.StatusUnprocessableEntity, "Invalid request.\n\n\"sha\" wasn't supplied.")
			return
		case put.SHA != "" && !exists:
			writeError(writer, http.StatusNotFound, "Not Found")
			return
		case put.SHA != "" && put.SHA != blobSHA(current):
			writeError(writer, http.StatusConflict, fmt.Sprintf("%s does not match %s", path, put.SHA))
			return
		}
		content, err := base64.StdEncoding.DecodeString(put.Content)
		if err != nil {
			writeError(writer, http.StatusUnprocessableEntity, "content is not valid Base64")
			return
		}
		repository.files[path] = content
		repository.commits = append(repository.commits, put.Message)
		status := http.StatusOK
		if !exists {
			status = http.StatusCreated
		}
		writer.WriteHeader(status)
		json.NewEncoder(writer).Encode(map[string]any{
			"content": map[string]string{"path": path, "sha": blobSHA(content)},
			"commit":  map[string]string{"sha": fmt.Sprintf("commit-%d", len(repository.commits))},
		})
	default:
		writeError(writer, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

func testToken(t *testing.T) *secret.Buffer {
	t.Helper()
	token, err := secret.NewFromBytes([]byte("test-token"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	t.Cleanup(func() { token.Close() })
	return token
}

func newTestStore(t *testing.T) (*Store, *fakeRepository) {
	t.Helper()
	repository := &fakeRepository{files: make(map[string][]byte)}
	server := httptest.NewTLSServer(repository)
	t.Cleanup(server.Close)

	client, err := github.NewClient(github.Config{
		BaseURL:    server.URL,
		Token:      testToken(t),
		HTTPClient: server.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	store, err := New(Config{Client: client, Owner: "owner", Repo: "repo"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store, repository
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) versionstore.Store {
		store, _ := newTestStore(t)
		return store
	})
}

func TestWriteRecordsCommitMessage(t *testing.T) {
	store, repository := newTestStore(t)
	ctx := context.Background()

	version, err := store.Write(ctx, "whitelist.html", []byte("<pre id=\"raw-data\">\n42</pre>"), versionstore.NoVersion, "Add group ID 42")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if want := versionstore.Version(blobSHA([]byte("<pre id=\"raw-data\">\n42</pre>"))); version != want {
		t.Errorf("version = %q, want blob sha %q", version, want)
	}
	if len(repository.commits) != 1 || repository.commits[0] != "Add group ID 42" {
		t.Errorf("commits = %v, want [Add group ID 42]", repository.commits)
	}
}

func TestServerErrorIsUnavailable(t *testing.T) {
	store, repository := newTestStore(t)
	repository.failWith = http.StatusBadGateway

	if _, err := store.Fetch(context.Background(), "whitelist.html"); !errors.Is(err, versionstore.ErrUnavailable) {
		t.Errorf("Fetch error = %v, want ErrUnavailable", err)
	}
	if _, err := store.Write(context.Background(), "whitelist.html", []byte("x"), "abc", "m"); !errors.Is(err, versionstore.ErrUnavailable) {
		t.Errorf("Write error = %v, want ErrUnavailable", err)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{Owner: "o", Repo: "r"}); err == nil {
		t.Error("New without a client succeeded")
	}
	client, err := github.NewClient(github.Config{Token: testToken(t)})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := New(Config{Client: client, Owner: "o"}); err == nil {
		t.Error("New without a repo succeeded")
	}
}
