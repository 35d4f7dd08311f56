// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package listapi

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/riskful/grouplist/lib/groupid"
	"github.com/riskful/grouplist/lib/reconcile"
)

// ConsistencyHeader reports the store's concurrency guarantee on every
// list and update response.
const ConsistencyHeader = "X-Grouplist-Consistency"

// ListRequest is the body of a list call.
type ListRequest struct {
	Secret string `json:"secret"`
}

// ListResponse carries the IDs of a list in ascending order. The field
// is named "whitelist" for every list; existing clients read it by that
// name.
type ListResponse struct {
	IDs         []int64 `json:"whitelist"`
	Consistency string  `json:"consistency"`
}

// UpdateRequest is the body of an update call. Exactly one mutation is
// derived from it; see [UpdateRequest.Mutation]. GroupID and
// RemoveGroupID accept a JSON number or a string of digits.
type UpdateRequest struct {
	Secret        string          `json:"secret"`
	GroupID       json.RawMessage `json:"groupId,omitempty"`
	RemoveGroupID json.RawMessage `json:"removeGroupId,omitempty"`
	Reset         bool            `json:"reset,omitempty"`
	Action        string          `json:"action,omitempty"`
}

// UpdateResponse reports a successful update.
type UpdateResponse struct {
	Message     string `json:"message"`
	Changed     bool   `json:"changed"`
	Consistency string `json:"consistency"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MethodNotAllowed is the ErrorResponse code for a known path called
// with the wrong HTTP method.
const MethodNotAllowed = "method_not_allowed"

// NumericID encodes id for UpdateRequest.GroupID or RemoveGroupID.
func NumericID(id groupid.ID) json.RawMessage {
	return json.RawMessage(strconv.FormatInt(int64(id), 10))
}

// present reports whether a raw ID field was supplied.
func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// ParseGroupID decodes a group ID sent as a JSON number or string.
// Strings must be entirely digits; numbers must be integral.
func ParseGroupID(raw json.RawMessage) (groupid.ID, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		id, err := groupid.Parse(text)
		if err != nil {
			return 0, reconcile.Errorf(reconcile.KindBadRequest, "bad group ID: %v", err)
		}
		return id, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var number json.Number
	if err := decoder.Decode(&number); err != nil {
		return 0, reconcile.Errorf(reconcile.KindBadRequest, "bad group ID: expected a number or numeric string")
	}
	id, err := groupid.Parse(number.String())
	if err != nil {
		return 0, reconcile.Errorf(reconcile.KindBadRequest, "bad group ID %s", number.String())
	}
	return id, nil
}

// Mutation derives the single mutation an update request asks for.
// Precedence: reset, then an explicit action with groupId, then
// groupId alone (add), then removeGroupId alone (remove). Without an
// action, giving both IDs is a bad request.
func (request *UpdateRequest) Mutation() (reconcile.Mutation, error) {
	if request.Reset {
		return reconcile.Reset(), nil
	}

	if request.Action != "" {
		op, err := reconcile.ParseOp(request.Action)
		if err != nil {
			return reconcile.Mutation{}, err
		}
		if op == reconcile.OpReset {
			return reconcile.Reset(), nil
		}
		raw := request.GroupID
		if !present(raw) && op == reconcile.OpRemove {
			raw = request.RemoveGroupID
		}
		if !present(raw) {
			return reconcile.Mutation{}, reconcile.Errorf(reconcile.KindBadRequest, "bad group ID: groupId is required")
		}
		id, err := ParseGroupID(raw)
		if err != nil {
			return reconcile.Mutation{}, err
		}
		return reconcile.Mutation{Op: op, ID: id}, nil
	}

	switch {
	case present(request.GroupID) && present(request.RemoveGroupID):
		return reconcile.Mutation{}, reconcile.Errorf(reconcile.KindBadRequest, "bad group ID: give groupId or removeGroupId, not both")
	case present(request.GroupID):
		id, err := ParseGroupID(request.GroupID)
		if err != nil {
			return reconcile.Mutation{}, err
		}
		return reconcile.Add(id), nil
	case present(request.RemoveGroupID):
		id, err := ParseGroupID(request.RemoveGroupID)
		if err != nil {
			return reconcile.Mutation{}, err
		}
		return reconcile.Remove(id), nil
	default:
		return reconcile.Mutation{}, reconcile.Errorf(reconcile.KindBadRequest, "bad group ID: one of groupId, removeGroupId or reset is required")
	}
}
