package collab

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/roomdir-dev/roomdir/internal/config"
	"github.com/roomdir-dev/roomdir/internal/logging"
	"github.com/roomdir-dev/roomdir/internal/models"
)

const (
	tagsPath     = "/rest/v1/collaborative_tags"
	activityPath = "/rest/v1/tag_activity_log"
	sessionsPath = "/rest/v1/collaboration_sessions"
)

// User identifies the person behind local changes.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserFromConfig lowercases the email and defaults the display name to its
// local part.
func UserFromConfig(cfg config.CollabConfig) User {
	email := strings.ToLower(strings.TrimSpace(cfg.UserEmail))
	name := strings.TrimSpace(cfg.UserName)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return User{Email: email, Name: name}
}

// RemoteTag is a row of the collaborative_tags table.
type RemoteTag struct {
	ID             string `json:"id,omitempty"`
	RoomIdentifier string `json:"room_identifier"`
	TagName        string `json:"tag_name"`
	TagType        string `json:"tag_type"`
	Description    string `json:"description,omitempty"`
	Link           string `json:"link,omitempty"`
	Contact        string `json:"contact,omitempty"`
	ImageURL       string `json:"image_url,omitempty"`
	Color          string `json:"color"`
	CreatedBy      string `json:"created_by,omitempty"`
	UpdatedBy      string `json:"updated_by,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	ProjectID      string `json:"project_id"`
	IsActive       bool   `json:"is_active"`
}

// NewRemoteTag builds the row stored for tag on the room with the given
// identifier.
func NewRemoteTag(identifier string, tag models.CustomTag, user User, projectID string) RemoteTag {
	tagType := tag.Type
	if tagType == "" {
		tagType = models.DefaultTagType
	}
	color := tag.Color
	if color == "" {
		color = models.DefaultTagColor
	}
	return RemoteTag{
		RoomIdentifier: identifier,
		TagName:        tag.Name,
		TagType:        tagType,
		Description:    tag.Description,
		Link:           tag.Link,
		Contact:        tag.Contact,
		ImageURL:       tag.ImageURL,
		Color:          color,
		CreatedBy:      user.Email,
		UpdatedBy:      user.Email,
		ProjectID:      projectID,
		IsActive:       true,
	}
}

// CustomTag converts the row into a local tag marked as collaborative.
func (r RemoteTag) CustomTag() models.CustomTag {
	tag := models.CustomTag{
		ID:            r.ID,
		Name:          r.TagName,
		Type:          r.TagType,
		Description:   r.Description,
		Link:          r.Link,
		Contact:       r.Contact,
		ImageURL:      r.ImageURL,
		Color:         r.Color,
		Collaborative: true,
		CreatedBy:     r.CreatedBy,
	}
	if tag.Type == "" {
		tag.Type = models.DefaultTagType
	}
	if tag.Color == "" {
		tag.Color = models.DefaultTagColor
	}
	if created, err := time.Parse(time.RFC3339Nano, r.CreatedAt); err == nil {
		tag.Created = created
	} else {
		tag.Created = time.Now().UTC()
	}
	tag.IsRich = tag.Type != models.DefaultTagType || tag.HasDetails()
	return tag
}

// ActivityEntry is a row of the tag_activity_log table.
type ActivityEntry struct {
	ProjectID      string            `json:"project_id"`
	RoomIdentifier string            `json:"room_identifier"`
	Action         string            `json:"action"`
	TagName        string            `json:"tag_name"`
	UserEmail      string            `json:"user_email"`
	UserName       string            `json:"user_name"`
	OldData        *models.CustomTag `json:"old_data"`
	NewData        *RemoteTag        `json:"new_data"`
}

// Client talks to the PostgREST endpoints of the sync backend.
type Client struct {
	http      *resty.Client
	projectID string
	user      User
	logger    *zap.Logger
}

// NewClient creates a client for the configured backend and project.
func NewClient(cfg config.CollabConfig, projectID string, logger *zap.Logger) *Client {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		rc.SetHeader("apikey", cfg.APIKey).SetAuthToken(cfg.APIKey)
	}

	return &Client{
		http:      rc,
		projectID: projectID,
		user:      UserFromConfig(cfg),
		logger:    logging.OrNop(logger),
	}
}

// ProjectID returns the project the client reads and writes.
func (c *Client) ProjectID() string { return c.projectID }

// User returns the acting user.
func (c *Client) User() User { return c.user }

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

func checkResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("collab %s: %w", op, err)
	}
	if resp.IsError() {
		return fmt.Errorf("collab %s: status %d: %s", op, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return nil
}

// JoinSession records the user as active in the project.
func (c *Client) JoinSession(ctx context.Context) error {
	body := map[string]any{
		"project_id":    c.projectID,
		"user_email":    c.user.Email,
		"user_name":     c.user.Name,
		"last_activity": time.Now().UTC().Format(time.RFC3339),
		"is_active":     true,
	}
	resp, err := c.request(ctx).
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetBody(body).
		Post(sessionsPath)
	return checkResponse("join session", resp, err)
}

// ListTags returns the active tags of the project.
func (c *Client) ListTags(ctx context.Context) ([]RemoteTag, error) {
	var tags []RemoteTag
	resp, err := c.request(ctx).
		SetQueryParams(map[string]string{
			"select":     "*",
			"project_id": "eq." + c.projectID,
			"is_active":  "eq.true",
		}).
		SetResult(&tags).
		Get(tagsPath)
	if err := checkResponse("list tags", resp, err); err != nil {
		return nil, err
	}
	return tags, nil
}

// UpsertTag stores tag, replacing the row with the same room and name.
func (c *Client) UpsertTag(ctx context.Context, tag RemoteTag) error {
	resp, err := c.request(ctx).
		SetQueryParam("on_conflict", "project_id,room_identifier,tag_name").
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetBody(tag).
		Post(tagsPath)
	return checkResponse("upsert tag", resp, err)
}

// DeactivateTag soft deletes the named tag on a room.
func (c *Client) DeactivateTag(ctx context.Context, identifier, name string) error {
	resp, err := c.request(ctx).
		SetQueryParams(map[string]string{
			"room_identifier": "eq." + identifier,
			"tag_name":        "eq." + name,
			"project_id":      "eq." + c.projectID,
		}).
		SetHeader("Prefer", "return=minimal").
		SetBody(map[string]any{"is_active": false, "updated_by": c.user.Email}).
		Patch(tagsPath)
	return checkResponse("deactivate tag", resp, err)
}

// LogActivity appends an entry to the shared activity log.
func (c *Client) LogActivity(ctx context.Context, entry ActivityEntry) error {
	entry.ProjectID = c.projectID
	entry.UserEmail = c.user.Email
	entry.UserName = c.user.Name
	resp, err := c.request(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(entry).
		Post(activityPath)
	return checkResponse("log activity", resp, err)
}
