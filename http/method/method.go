package method

import "strings"

type Method uint8

const (
	Unknown Method = iota
	GET
	HEAD
	POST
	PUT
	DELETE
	CONNECT
	OPTIONS
	TRACE
	PATCH
)

var names = [...]string{
	Unknown: "UNKNOWN",
	GET:     "GET",
	HEAD:    "HEAD",
	POST:    "POST",
	PUT:     "PUT",
	DELETE:  "DELETE",
	CONNECT: "CONNECT",
	OPTIONS: "OPTIONS",
	TRACE:   "TRACE",
	PATCH:   "PATCH",
}

// Parse recognizes a method token case-insensitively. Tokens that aren't a known
// method are reported as Unknown.
func Parse(str string) Method {
	str = strings.ToUpper(str)

	for m := GET; m <= PATCH; m++ {
		if names[m] == str {
			return m
		}
	}

	return Unknown
}

func (m Method) String() string {
	if int(m) >= len(names) {
		return names[Unknown]
	}

	return names[m]
}
