// Package session provides MCP tools around the Deezer Connect login flow.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-training/deezer-connect/pkg/core"
	"github.com/go-training/deezer-connect/pkg/deezer"

	"github.com/mark3labs/mcp-go/mcp"
)

// LoginURLTool defines the MCP tool for building a Deezer login URL.
var LoginURLTool = mcp.NewTool("deezer_login_url",
	mcp.WithDescription(`Deezer Login URL Tool

Description:
  Builds the URL an end user must open to grant this application access to
  their Deezer account. No request is made to Deezer.

Input Parameters:
  - redirect_url (string, required): where Deezer sends the user back. Must be
    on the domain registered for the application.
  - app_id (string or integer, optional): application ID. Defaults to the
    configured application.
  - perms (array of strings, optional): permissions to request, in order.
    Defaults to ["basic_access"]. Known values: basic_access, email,
    offline_access, manage_library, manage_community, delete_library,
    listening_history.

Output:
  - The login URL as text.`),
	mcp.WithString("redirect_url",
		mcp.Description("URL Deezer redirects to after the user answers."),
		mcp.Required(),
	),
	mcp.WithString("app_id",
		mcp.Description("Deezer application ID (string or integer). Defaults to the configured one."),
	),
	mcp.WithArray("perms",
		mcp.Description("Permissions to request, in order. Defaults to basic_access."),
	),
)

// CreateSessionTool defines the MCP tool for exchanging an authorization code.
var CreateSessionTool = mcp.NewTool("deezer_create_session",
	mcp.WithDescription("Exchange a Deezer authorization code for an access token using the configured application credentials. Returns JSON with access_token and expires (seconds, 0 = never)."),
	mcp.WithString("code",
		mcp.Description("The code Deezer appended to the redirect URL."),
		mcp.Required(),
	),
)

// CheckSessionTool defines the MCP tool for checking an access token.
var CheckSessionTool = mcp.NewTool("deezer_check_session",
	mcp.WithDescription("Check an access token. Deezer has no API for this yet, so the tool always fails."),
	mcp.WithString("access_token", mcp.Required()),
)

// DestroySessionTool defines the MCP tool for revoking an access token.
var DestroySessionTool = mcp.NewTool("deezer_destroy_session",
	mcp.WithDescription("Revoke an access token. Deezer has no API for this yet, so the tool always fails."),
	mcp.WithString("access_token", mcp.Required()),
)

// HandleLoginURLTool builds a login URL from the tool arguments.
// Arguments that fail validation produce an error result naming them.
func HandleLoginURLTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := core.LoggerFromCtx(ctx)
	args := req.GetArguments()

	client, err := core.ClientFromContext(ctx)
	if err != nil {
		logger.Error("Missing deezer client from context", "error", err)
		return nil, err
	}

	appID, err := appIDArgument(ctx, args)
	if err != nil {
		return invalidArgument(ctx, err)
	}

	redirectURL, ok := args["redirect_url"].(string)
	if !ok {
		return invalidArgument(ctx, deezer.ValidateArgument("redirectUrl", args["redirect_url"], deezer.KindString))
	}

	var perms []deezer.Permission
	if raw, present := args["perms"]; present {
		values, err := deezer.StringSequence("perms", raw)
		if err != nil {
			return invalidArgument(ctx, err)
		}
		perms = deezer.ParsePermissions(values)
	}

	loginURL, err := client.LoginURL(appID, redirectURL, perms)
	if err != nil {
		return invalidArgument(ctx, err)
	}

	logger.Info("Built deezer login URL", "app_id", appID.String(), "perms_default", perms == nil)
	return mcp.NewToolResultText(loginURL), nil
}

// HandleCreateSessionTool exchanges the code argument for an access token.
func HandleCreateSessionTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := core.LoggerFromCtx(ctx)

	client, err := core.ClientFromContext(ctx)
	if err != nil {
		logger.Error("Missing deezer client from context", "error", err)
		return nil, err
	}
	creds, err := core.CredentialsFromContext(ctx)
	if err != nil {
		logger.Error("Missing deezer credentials from context", "error", err)
		return nil, err
	}

	rawCode := req.GetArguments()["code"]
	if err := deezer.ValidateArgument("code", rawCode, deezer.KindString); err != nil {
		return invalidArgument(ctx, err)
	}
	code := rawCode.(string)
	if code == "" {
		return mcp.NewToolResultError("code is required"), nil
	}

	session, err := client.CreateSession(ctx, creds.AppID, creds.Secret, code)
	if err != nil {
		logger.Warn("Deezer session creation failed", "error", err)
		return mcp.NewToolResultError(describe(err)), nil
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	logger.Info("Deezer session created", "expires", session.Expires)
	return mcp.NewToolResultText(string(data)), nil
}

// HandleCheckSessionTool always reports that checking is unsupported.
func HandleCheckSessionTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return unsupported(ctx, req, (*deezer.Client).CheckSession)
}

// HandleDestroySessionTool always reports that revocation is unsupported.
func HandleDestroySessionTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return unsupported(ctx, req, (*deezer.Client).DestroySession)
}

func unsupported(
	ctx context.Context,
	req mcp.CallToolRequest,
	op func(*deezer.Client, context.Context, deezer.AppID, string) error,
) (*mcp.CallToolResult, error) {
	client, err := core.ClientFromContext(ctx)
	if err != nil {
		return nil, err
	}
	creds, _ := core.CredentialsFromContext(ctx)
	token, _ := req.GetArguments()["access_token"].(string)
	if err := op(client, ctx, creds.AppID, token); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

// appIDArgument reads app_id, falling back to the configured credentials.
func appIDArgument(ctx context.Context, args map[string]any) (deezer.AppID, error) {
	if raw, present := args["app_id"]; present {
		return deezer.ParseAppID(raw)
	}
	creds, err := core.CredentialsFromContext(ctx)
	if err != nil {
		return deezer.ParseAppID(nil)
	}
	return creds.AppID, nil
}

func invalidArgument(ctx context.Context, err error) (*mcp.CallToolResult, error) {
	core.LoggerFromCtx(ctx).Warn("Invalid tool argument", "error", err)
	return mcp.NewToolResultError(err.Error()), nil
}

// describe turns a CreateSession error into text for the tool result.
func describe(err error) string {
	var (
		providerErr *deezer.ProviderError
		unknownErr  *deezer.UnknownResponseError
	)
	switch {
	case errors.As(err, &providerErr):
		return fmt.Sprintf("deezer refused the code (status %d): %s", providerErr.StatusCode, providerErr.Body)
	case errors.As(err, &unknownErr):
		return unknownErr.Error()
	default:
		return err.Error()
	}
}
