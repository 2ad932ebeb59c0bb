// Package directory looks up the staff, client and service records owned by
// the record-keeping collaborator.
package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"staffbook/pkg/client"
	apperrors "staffbook/pkg/errors"
	"staffbook/pkg/logger"
)

var ErrDurationUnknown = errors.New("service duration unknown")

type Directory interface {
	StaffExists(ctx context.Context, staffID string) (bool, error)
	ClientExists(ctx context.Context, clientID string) (bool, error)
	// ServiceDuration returns ErrDurationUnknown when the directory cannot say.
	ServiceDuration(ctx context.Context, serviceID string) (int, error)
}

type httpDirectory struct {
	client *client.HttpClient
	log    *logger.Logger
}

func NewHTTPDirectory(c *client.HttpClient, log *logger.Logger) Directory {
	return &httpDirectory{client: c, log: log}
}

func (d *httpDirectory) StaffExists(ctx context.Context, staffID string) (bool, error) {
	return d.exists(ctx, "/api/v1/staff/"+url.PathEscape(staffID))
}

func (d *httpDirectory) ClientExists(ctx context.Context, clientID string) (bool, error) {
	return d.exists(ctx, "/api/v1/clients/"+url.PathEscape(clientID))
}

func (d *httpDirectory) exists(ctx context.Context, path string) (bool, error) {
	resp, err := d.client.GET(ctx, path)
	if err != nil {
		return false, fmt.Errorf("directory lookup %s: %w", path, err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("directory lookup %s: status %d: %s", path, resp.StatusCode, client.GetErrorMessage(resp))
	}
}

func (d *httpDirectory) ServiceDuration(ctx context.Context, serviceID string) (int, error) {
	path := "/api/v1/services/" + url.PathEscape(serviceID)
	resp, err := d.client.GET(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("directory lookup %s: %w", path, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return 0, ErrDurationUnknown
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("directory lookup %s: status %d: %s", path, resp.StatusCode, client.GetErrorMessage(resp))
	}

	var body struct {
		Data struct {
			DurationMin int `json:"duration_min"`
		} `json:"data"`
	}
	if err := resp.DecodeJSON(&body); err != nil {
		return 0, fmt.Errorf("decode service %s: %w", serviceID, err)
	}
	if body.Data.DurationMin <= 0 {
		return 0, ErrDurationUnknown
	}
	return body.Data.DurationMin, nil
}

// openDirectory is used when no directory is configured: every record exists
// and durations must come from the caller.
type openDirectory struct{}

func NewOpenDirectory() Directory {
	return openDirectory{}
}

func (openDirectory) StaffExists(context.Context, string) (bool, error)  { return true, nil }
func (openDirectory) ClientExists(context.Context, string) (bool, error) { return true, nil }
func (openDirectory) ServiceDuration(context.Context, string) (int, error) {
	return 0, ErrDurationUnknown
}

// RequireStaff maps a missing staff member to NOT_FOUND. Empty ids are not looked up.
func RequireStaff(ctx context.Context, d Directory, staffID string) error {
	if staffID == "" {
		return nil
	}
	return checkFound(d.StaffExists(ctx, staffID))("Staff", staffID)
}

func RequireClient(ctx context.Context, d Directory, clientID string) error {
	return checkFound(d.ClientExists(ctx, clientID))("Client", clientID)
}

func checkFound(ok bool, err error) func(resource, id string) error {
	return func(resource, id string) error {
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeUnavailable, "Directory is temporarily unavailable", http.StatusServiceUnavailable)
		}
		if !ok {
			return apperrors.NotFoundWithID(resource, id)
		}
		return nil
	}
}
