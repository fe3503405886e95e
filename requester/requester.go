// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package requester

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/rpc/v2/json2"
)

type Option func(*Options)

type Options struct {
	headers http.Header
}

func NewOptions(ops []Option) *Options {
	o := &Options{headers: http.Header{}}
	for _, op := range ops {
		op(o)
	}
	return o
}

func WithHeader(key, value string) Option {
	return func(o *Options) {
		o.headers.Set(key, value)
	}
}

// EndpointRequester sends JSON-RPC 2.0 requests for a single service.
type EndpointRequester struct {
	cli  *http.Client
	uri  string
	name string
}

func New(uri string, name string) *EndpointRequester {
	return &EndpointRequester{
		cli:  http.DefaultClient,
		uri:  uri,
		name: name,
	}
}

func (e *EndpointRequester) SendRequest(
	ctx context.Context,
	method string,
	params interface{},
	reply interface{},
	options ...Option,
) error {
	uri, err := url.Parse(e.uri)
	if err != nil {
		return err
	}

	requestBodyBytes, err := json2.EncodeClientRequest(e.name+"."+method, params)
	if err != nil {
		return fmt.Errorf("problem marshaling request: %w", err)
	}

	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		uri.String(),
		bytes.NewBuffer(requestBodyBytes),
	)
	if err != nil {
		return fmt.Errorf("problem creating new request: %w", err)
	}

	ops := NewOptions(options)
	request.Header = ops.headers
	request.Header.Set("Content-Type", "application/json")

	resp, err := e.cli.Do(request)
	if err != nil {
		return fmt.Errorf("problem while making JSON RPC POST request to %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Service errors still carry a JSON-RPC body.
		if err := json2.DecodeClientResponse(resp.Body, reply); err != nil {
			return err
		}
		return fmt.Errorf("received status code: %d", resp.StatusCode)
	}
	return json2.DecodeClientResponse(resp.Body, reply)
}
