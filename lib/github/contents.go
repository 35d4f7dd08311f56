// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// FileContent is a single file returned by the repository contents API.
type FileContent struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Size     int64  `json:"size"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Content  string `json:"content"`
	SHA      string `json:"sha"`
	HTMLURL  string `json:"html_url"`
}

// Decode returns the file bytes. GitHub wraps base64 content at 60
// columns, so embedded newlines are stripped before decoding.
func (file *FileContent) Decode() ([]byte, error) {
	if file.Type != "" && file.Type != "file" {
		return nil, fmt.Errorf("github: %s is a %s, not a file", file.Path, file.Type)
	}
	if file.Encoding != "base64" {
		return nil, fmt.Errorf("github: unsupported content encoding %q for %s", file.Encoding, file.Path)
	}
	cleaned := strings.NewReplacer("\n", "", "\r", "").Replace(file.Content)
	decoded, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("github: decoding %s: %w", file.Path, err)
	}
	return decoded, nil
}

// CommitAuthor identifies the committer of a contents write.
type CommitAuthor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PutContentsRequest creates or updates a file. SHA must be the blob
// SHA of the current file when updating and empty when creating; GitHub
// rejects a mismatch with 409 (stale SHA) or 422 (SHA missing for an
// existing file).
type PutContentsRequest struct {
	Message   string        `json:"message"`
	Content   string        `json:"content"`
	SHA       string        `json:"sha,omitempty"`
	Branch    string        `json:"branch,omitempty"`
	Committer *CommitAuthor `json:"committer,omitempty"`
}

// NewPutContentsRequest base64-encodes content into a request.
func NewPutContentsRequest(message string, content []byte, sha, branch string) PutContentsRequest {
	return PutContentsRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     sha,
		Branch:  branch,
	}
}

// PutContentsResponse is the result of a successful contents write.
type PutContentsResponse struct {
	Content FileContent `json:"content"`
	Commit  struct {
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
	} `json:"commit"`
}

// GetContents fetches a file at path. An empty ref reads the
// repository's default branch.
func (client *Client) GetContents(ctx context.Context, owner, repo, path, ref string) (*FileContent, error) {
	requestPath := contentsPath(owner, repo, path)
	if ref != "" {
		requestPath += "?ref=" + url.QueryEscape(ref)
	}
	var file FileContent
	if err := client.get(ctx, requestPath, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// PutContents creates or updates a file at path.
func (client *Client) PutContents(ctx context.Context, owner, repo, path string, request PutContentsRequest) (*PutContentsResponse, error) {
	var response PutContentsResponse
	if err := client.put(ctx, contentsPath(owner, repo, path), request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func contentsPath(owner, repo, path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for index, segment := range segments {
		segments[index] = url.PathEscape(segment)
	}
	return fmt.Sprintf("/repos/%s/%s/contents/%s",
		url.PathEscape(owner), url.PathEscape(repo), strings.Join(segments, "/"))
}
