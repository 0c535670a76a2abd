package graphqlclient

import (
	"context"
	"fmt"

	"github.com/machinebox/graphql"

	"github.com/conveydesk/convey-cli/internal/access"
)

const viewerQuery = `
query GetViewer {
    getViewer {
        accountId
        emailAddress
        role
        grantedPermissions
    }
}`

// Viewer fetches the authenticated account and maps it onto the access
// model consumed by the authorization gate.
func (c *Client) Viewer(ctx context.Context) (*access.User, error) {
	req := graphql.NewRequest(viewerQuery)

	var respEnvelope struct {
		GetViewer struct {
			AccountID          string   `json:"accountId"`
			EmailAddress       string   `json:"emailAddress"`
			Role               string   `json:"role"`
			GrantedPermissions []string `json:"grantedPermissions"`
		} `json:"getViewer"`
	}

	if err := c.Execute(ctx, req, &respEnvelope); err != nil {
		return nil, fmt.Errorf("graphql request failed: %w", err)
	}

	role, err := access.ParseRole(respEnvelope.GetViewer.Role)
	if err != nil {
		return nil, fmt.Errorf("account has an unrecognised role: %w", err)
	}

	return &access.User{
		ID:     respEnvelope.GetViewer.AccountID,
		Email:  respEnvelope.GetViewer.EmailAddress,
		Role:   role,
		Grants: respEnvelope.GetViewer.GrantedPermissions,
	}, nil
}
