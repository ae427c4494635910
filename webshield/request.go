package webshield

import (
	"net/url"
)

// RequestClass of an intercepted request
type RequestClass int8

// revive:disable:var-naming
const (
	MainFrame RequestClass = iota
	SubFrame
	Subresource
)

func (c RequestClass) String() string {
	switch c {
	case MainFrame:
		return "main_frame"
	case SubFrame:
		return "sub_frame"
	case Subresource:
		return "subresource"
	}
	return "unknown"
}

// Code is the numeric request type handed to the detection module
func (c RequestClass) Code() int16 {
	switch c {
	case MainFrame:
		return 0
	case SubFrame:
		return 1
	case Subresource:
		return 2
	}
	return -1
}

// Request is a single intercepted network request
type Request struct {
	ID      string
	URL     *url.URL
	Class   RequestClass
	Private bool
	Frame   FrameRef
}

// Controller resumes or cancels a deferred request
type Controller interface {
	Resume()
	Cancel()
}
