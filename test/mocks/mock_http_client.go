package mocks

import (
	"bytes"
	"io"
	"net/http"
)

// MockHTTPClient stubs the payout provider's HTTP transport. Without a
// DoFunc it answers every request with a pending disbursement body.
type MockHTTPClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)
	Calls  []*http.Request
}

func NewMockHTTPClient(doFunc func(req *http.Request) (*http.Response, error)) *MockHTTPClient {
	return &MockHTTPClient{DoFunc: doFunc}
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.Calls = append(m.Calls, req)
	if m.DoFunc != nil {
		return m.DoFunc(req)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(`{"id":"disb-mock","status":"PENDING"}`)),
		Header:     make(http.Header),
	}, nil
}
