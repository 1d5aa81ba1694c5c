package adapter

import "github.com/getstubd/stubd/pkg/stub"

// DescriptorOption adds optional fields to a request descriptor while it is
// being built. The descriptor is a read-only snapshot afterwards.
type DescriptorOption func(*stub.RequestDescriptor)

// WithQueryParameters sets the query-parameter map.
func WithQueryParameters(params map[string]string) DescriptorOption {
	return func(r *stub.RequestDescriptor) {
		r.QueryParameters = copyMap(params)
	}
}

// WithHeaders sets the header map.
func WithHeaders(headers map[string]string) DescriptorOption {
	return func(r *stub.RequestDescriptor) {
		r.Headers = copyMap(headers)
	}
}

// WithBody attaches a serialized request body.
func WithBody(body []byte) DescriptorOption {
	return func(r *stub.RequestDescriptor) {
		if body == nil {
			r.Body = nil
			return
		}
		r.Body = append([]byte(nil), body...)
	}
}

// DescriptorFromBuilder snapshots a request the way the generated code
// would: the builder's template and path-parameter values, the method, and
// whatever the options add. Maps are copied so later mutation of the builder
// cannot change the descriptor.
func DescriptorFromBuilder(method string, b RequestBuilder, opts ...DescriptorOption) *stub.RequestDescriptor {
	r := &stub.RequestDescriptor{
		Method:         method,
		Template:       b.URLTemplate(),
		PathParameters: copyMap(b.PathParameters()),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
