package protocol

import (
	"net/url"
	"strconv"
)

// Endpoints builds request URLs for the batch and streaming endpoints.
type Endpoints struct {
	BatchURL   string
	QueryURL   string
	BuildLabel string
	Language   string
}

// Batch returns the batchexecute URL for one RPC.
func (e Endpoints) Batch(opID, sessionID, sourcePath string) string {
	if sourcePath == "" {
		sourcePath = "/"
	}
	q := url.Values{}
	q.Set("rpcids", opID)
	q.Set("source-path", sourcePath)
	e.common(q, sessionID)
	return e.BatchURL + "?" + q.Encode()
}

// Query returns the streaming query URL.
func (e Endpoints) Query(sessionID string, reqID int64) string {
	q := url.Values{}
	q.Set("_reqid", strconv.FormatInt(reqID, 10))
	e.common(q, sessionID)
	return e.QueryURL + "?" + q.Encode()
}

func (e Endpoints) common(q url.Values, sessionID string) {
	if e.BuildLabel != "" {
		q.Set("bl", e.BuildLabel)
	}
	lang := e.Language
	if lang == "" {
		lang = "en"
	}
	q.Set("hl", lang)
	q.Set("rt", "c")
	if sessionID != "" {
		q.Set("f.sid", sessionID)
	}
}
