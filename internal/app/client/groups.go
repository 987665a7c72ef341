package client

import (
	"context"
	"strings"

	"github.com/machoraatuti/moringaconnect/internal/app/domain/group"
	"github.com/machoraatuti/moringaconnect/internal/app/gateway"
	"github.com/machoraatuti/moringaconnect/internal/app/runner"
)

// FetchGroups replaces the group listing with the server's view.
func (c *Client) FetchGroups(ctx context.Context) error {
	return runner.Run(ctx, c.log, runner.Op[[]group.Group]{
		Store:          "groups",
		Name:           "fetchGroups",
		FailureMessage: "Failed to load groups",
		Transitions:    c.groups,
		Exec: func(ctx context.Context) ([]group.Group, error) {
			raw, err := c.gw.Get(ctx, "groups")
			if err != nil {
				return nil, err
			}
			var items []group.Group
			if err := gateway.Decode(raw, &items); err != nil {
				return nil, err
			}
			return items, nil
		},
		Apply: func(seq uint64, items []group.Group) bool {
			return c.groups.ReplaceAll(seq, items)
		},
	})
}

// CreateGroup creates a group and surfaces it at the top of the listing.
func (c *Client) CreateGroup(ctx context.Context, data group.Data) error {
	if strings.TrimSpace(data.Name) == "" {
		return &ValidationError{Field: "name", Message: "required"}
	}
	return runner.Run(ctx, c.log, runner.Op[group.Group]{
		Store:          "groups",
		Name:           "createGroup",
		FailureMessage: "Failed to create group",
		Transitions:    c.groups,
		Exec: func(ctx context.Context) (group.Group, error) {
			raw, err := c.gw.Post(ctx, "groups", data)
			if err != nil {
				return group.Group{}, err
			}
			var created group.Group
			if err := gateway.Decode(raw, &created); err != nil {
				return group.Group{}, err
			}
			return created, nil
		},
		Apply: func(seq uint64, created group.Group) bool {
			return c.groups.Add(seq, created)
		},
	})
}

// UpdateGroup patches a group with the server's updated view.
func (c *Client) UpdateGroup(ctx context.Context, groupID string, data group.Data) error {
	if strings.TrimSpace(groupID) == "" {
		return &ValidationError{Field: "groupId", Message: "required"}
	}
	return runner.Run(ctx, c.log, runner.Op[group.Group]{
		Store:          "groups",
		Name:           "updateGroup",
		FailureMessage: "Failed to update group",
		Transitions:    c.groups,
		Exec: func(ctx context.Context) (group.Group, error) {
			raw, err := c.gw.Patch(ctx, "groups/"+groupID, data)
			if err != nil {
				return group.Group{}, err
			}
			var updated group.Group
			if err := gateway.Decode(raw, &updated); err != nil {
				return group.Group{}, err
			}
			return updated, nil
		},
		Apply: func(seq uint64, updated group.Group) bool {
			return c.groups.Patch(seq, updated)
		},
	})
}

// DeleteGroup removes a group. Repeating the delete for an id already gone
// settles cleanly and leaves the collection unchanged.
func (c *Client) DeleteGroup(ctx context.Context, groupID string) error {
	if strings.TrimSpace(groupID) == "" {
		return &ValidationError{Field: "groupId", Message: "required"}
	}
	return runner.Run(ctx, c.log, runner.Op[string]{
		Store:          "groups",
		Name:           "deleteGroup",
		FailureMessage: "Failed to delete group",
		Transitions:    c.groups,
		Exec: func(ctx context.Context) (string, error) {
			if _, err := c.gw.Delete(ctx, "groups/"+groupID); err != nil {
				return "", err
			}
			return groupID, nil
		},
		Apply: func(seq uint64, id string) bool {
			return c.groups.Remove(seq, id)
		},
	})
}

// JoinGroup joins the signed-in member to a group; the server answers with
// the group's new membership state.
func (c *Client) JoinGroup(ctx context.Context, groupID string) error {
	if strings.TrimSpace(groupID) == "" {
		return &ValidationError{Field: "groupId", Message: "required"}
	}
	return runner.Run(ctx, c.log, runner.Op[group.Group]{
		Store:          "groups",
		Name:           "joinGroup",
		FailureMessage: "Failed to join group",
		Transitions:    c.groups,
		Exec: func(ctx context.Context) (group.Group, error) {
			raw, err := c.gw.Post(ctx, "groups/"+groupID+"/join", nil)
			if err != nil {
				return group.Group{}, err
			}
			var joined group.Group
			if err := gateway.Decode(raw, &joined); err != nil {
				return group.Group{}, err
			}
			return joined, nil
		},
		Apply: func(seq uint64, joined group.Group) bool {
			return c.groups.Patch(seq, joined)
		},
	})
}

// ClearGroupsError discards the groups store error message.
func (c *Client) ClearGroupsError() { c.groups.ClearError() }
