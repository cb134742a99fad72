package mailbox

import (
	"context"
	"encoding/base64"
	json "encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	perr "donorpipe/internal/platform/errors"
)

// Search finds the newest message matching query and returns its first
// attachment. Partner search keys look like Gmail search syntax, e.g.
// "subject:(Daily Report) has:attachment"
func (c *Client) Search(ctx context.Context, query string) (*Attachment, error) {
	path := "/gmail/v1/users/me/messages?maxResults=1&q=" + url.QueryEscape(query)
	var list messageList
	if err := c.getJSON(ctx, path, &list); err != nil {
		return nil, err
	}
	if len(list.Messages) == 0 {
		return nil, perr.NotFoundf("no message matches %q", query)
	}

	id := list.Messages[0].ID
	var msg message
	if err := c.getJSON(ctx, fmt.Sprintf("/gmail/v1/users/me/messages/%s?format=full", id), &msg); err != nil {
		return nil, err
	}

	part, ok := findAttachment(msg.Payload)
	if !ok {
		return nil, perr.NotFoundf("message %s has no attachment", id)
	}

	data := part.Body.Data
	if data == "" {
		var body attachmentBody
		p := fmt.Sprintf("/gmail/v1/users/me/messages/%s/attachments/%s", id, part.Body.AttachmentID)
		if err := c.getJSON(ctx, p, &body); err != nil {
			return nil, err
		}
		data = body.Data
	}

	raw, err := decodeWebSafe(data)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDecoding, "attachment %s on message %s", part.Filename, id)
	}

	c.log.Info().
		Str("message_id", id).
		Str("filename", part.Filename).
		Int("bytes", len(raw)).
		Msg("attachment fetched")

	return &Attachment{MessageID: id, Filename: part.Filename, Data: raw}, nil
}

// Delete permanently removes a processed message from the mailbox
func (c *Client) Delete(ctx context.Context, messageID string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/gmail/v1/users/me/messages/"+messageID)
	if err != nil {
		return err
	}
	return drainAndClose(resp.Body)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("gmail close body failed")
		}
	}()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// findAttachment walks the MIME tree depth first for the first named part
func findAttachment(p messagePart) (messagePart, bool) {
	if p.Filename != "" && (p.Body.AttachmentID != "" || p.Body.Data != "") {
		return p, true
	}
	for _, child := range p.Parts {
		if found, ok := findAttachment(child); ok {
			return found, ok
		}
	}
	return messagePart{}, false
}

// decodeWebSafe decodes Gmail's URL safe base64, tolerating padding
func decodeWebSafe(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
