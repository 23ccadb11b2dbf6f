package github

import (
	"context"
	"errors"
)

// SourceProbe is the result of checking one upstream source.
type SourceProbe struct {
	OK     bool
	Status int // HTTP status when the probe failed with an API error, else 0
	Count  int
	Err    string
}

// Diagnostics summarizes a quick health check of every upstream source.
// Mirrors the popup's diagnose action: it never fails as a whole, each probe
// degrades independently.
type Diagnostics struct {
	Login         string
	User          SourceProbe
	Notifications SourceProbe
	Authored      SourceProbe
	GraphQL       SourceProbe
}

// RunDiagnostics probes the user, notifications, authored-search, and
// GraphQL endpoints in turn.
func (c *Client) RunDiagnostics(ctx context.Context) Diagnostics {
	var d Diagnostics

	user, err := c.GetUser(ctx)
	if err != nil {
		d.User = probeFromErr(err)
		return d
	}
	d.User = SourceProbe{OK: true}
	d.Login = user.Login

	page, err := c.GetPRNotifications(ctx, 1, 5, "")
	if err != nil {
		d.Notifications = probeFromErr(err)
	} else {
		d.Notifications = SourceProbe{OK: true, Count: page.RawCount}
	}

	authored, err := c.SearchAuthoredPRs(ctx, user.Login)
	if err != nil {
		d.Authored = probeFromErr(err)
	} else {
		d.Authored = SourceProbe{OK: true, Count: len(authored)}
	}

	gql, err := c.SearchPRsGraphQL(ctx, user.Login)
	if err != nil {
		d.GraphQL = probeFromErr(err)
	} else {
		d.GraphQL = SourceProbe{OK: true, Count: len(gql)}
	}

	return d
}

func probeFromErr(err error) SourceProbe {
	probe := SourceProbe{Err: err.Error()}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		probe.Status = apiErr.Status
	}
	return probe
}
