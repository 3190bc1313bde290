package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientConfig is handed to a client transport when it connects.
//
// A zero timeout means "use the transport default": for the socket transports
// that is no deadline at all (the operating system decides), for the http
// transport it is the net/http default. A zero timeout never means "fail
// immediately".
type ClientConfig struct {
	// Endpoints in declaration order. This is the order in which the
	// transport dials them.
	Endpoints []string

	// ConnectTimeout bounds dialing a single endpoint
	ConnectTimeout time.Duration
	// WriteTimeout bounds writing a single request
	WriteTimeout time.Duration
	// ReadTimeout bounds waiting for a single response
	ReadTimeout time.Duration

	ConnectionsPerEndpoint int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-24s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Connect Timeout", FormatTimeout(c.ConnectTimeout))
	addField("Write Timeout", FormatTimeout(c.WriteTimeout))
	addField("Read Timeout", FormatTimeout(c.ReadTimeout))
	addField("Connections Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.ConnectionsPerEndpoint)))))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}

// FormatTimeout renders a timeout, spelling out the meaning of zero
func FormatTimeout(d time.Duration) string {
	if d == 0 {
		return "transport default"
	}
	return d.String()
}
