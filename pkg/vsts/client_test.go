package vsts_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/flant/negentropy/sepctl/internal/vststest"
	"github.com/flant/negentropy/sepctl/pkg/httpx"
	"github.com/flant/negentropy/sepctl/pkg/vsts"
)

const testToken = "test-pat"

func newTestClient(t *testing.T) (*vsts.Client, *vststest.Server) {
	t.Helper()
	server := vststest.NewServer(testToken)
	t.Cleanup(server.Close)

	client, err := vsts.NewClientForAccount(server.URL, testToken)
	require.NoError(t, err)
	return client, server
}

func Test_ResolveProjectID(t *testing.T) {
	client, server := newTestClient(t)
	projectID := server.AddProject("My Project")

	id, err := client.ResolveProjectID(context.Background(), "My Project")

	require.NoError(t, err)
	require.Equal(t, projectID, id)
	require.Equal(t, "/defaultcollection/_apis/projects/My Project", server.Requests()[0].Path)
}

func Test_ResolveProjectIDNotFound(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.ResolveProjectID(context.Background(), "absent")

	var remoteErr *httpx.RemoteCallError
	require.True(t, errors.As(err, &remoteErr))
	require.Equal(t, http.StatusNotFound, remoteErr.StatusCode)
	require.Contains(t, remoteErr.Body, "TF200016")
}

func Test_ResolveProjectIDMalformed(t *testing.T) {
	client, server := newTestClient(t)
	server.AddProject("p")

	for _, body := range []string{`{"name":"p"}`, `{"id":"p"}`, `not json`} {
		server.Fail(vststest.RouteGetProject, http.StatusOK, body)
		_, err := client.ResolveProjectID(context.Background(), "p")
		require.True(t, errors.Is(err, httpx.ErrMalformedResponse), "body %s", body)
	}
}

func Test_WrongAccessToken(t *testing.T) {
	server := vststest.NewServer(testToken)
	defer server.Close()
	server.AddProject("p")

	client, err := vsts.NewClientForAccount(server.URL, "wrong")
	require.NoError(t, err)

	_, err = client.ResolveProjectID(context.Background(), "p")
	status, ok := httpx.StatusCode(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, status)
}

func Test_FindEndpointID(t *testing.T) {
	ctx := context.Background()

	t.Run("empty list", func(t *testing.T) {
		client, server := newTestClient(t)
		projectID := server.AddProject("p")

		_, found, err := client.FindEndpointID(ctx, projectID, "SEP-NAME")
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("no exact match", func(t *testing.T) {
		client, server := newTestClient(t)
		projectID := server.AddProject("p")
		server.AddEndpoint(projectID, "sep-name")
		server.AddEndpoint(projectID, "SEP-NAME-2")

		_, found, err := client.FindEndpointID(ctx, projectID, "SEP-NAME")
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("single match", func(t *testing.T) {
		client, server := newTestClient(t)
		projectID := server.AddProject("p")
		server.AddEndpoint(projectID, "other")
		endpointID := server.AddEndpoint(projectID, "SEP-NAME")

		id, found, err := client.FindEndpointID(ctx, projectID, "SEP-NAME")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, endpointID, id)

		list := server.RequestsTo(vststest.RouteListServiceEndpoints)
		require.Len(t, list, 1)
		require.Equal(t, "api-version=1.0", list[0].RawQuery)
	})

	t.Run("first match wins", func(t *testing.T) {
		client, server := newTestClient(t)
		projectID := server.AddProject("p")
		first := server.AddEndpoint(projectID, "SEP-NAME")
		server.AddEndpoint(projectID, "SEP-NAME")

		id, found, err := client.FindEndpointID(ctx, projectID, "SEP-NAME")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, first, id)
	})

	t.Run("malformed list", func(t *testing.T) {
		client, server := newTestClient(t)
		projectID := server.AddProject("p")
		server.Fail(vststest.RouteListServiceEndpoints, http.StatusOK, `{"count":1,"value":[{"name":"SEP-NAME"}]}`)

		_, _, err := client.FindEndpointID(ctx, projectID, "SEP-NAME")
		require.True(t, errors.Is(err, httpx.ErrMalformedResponse))
	})

	t.Run("remote failure", func(t *testing.T) {
		client, server := newTestClient(t)
		projectID := server.AddProject("p")
		server.Fail(vststest.RouteListServiceEndpoints, http.StatusInternalServerError, "oops")

		_, _, err := client.FindEndpointID(ctx, projectID, "SEP-NAME")
		var remoteErr *httpx.RemoteCallError
		require.True(t, errors.As(err, &remoteErr))
		require.Equal(t, "oops", remoteErr.Body)
	})
}

func Test_EndpointExistsUsesOneRequest(t *testing.T) {
	client, server := newTestClient(t)
	projectID := server.AddProject("p")

	for _, name := range []string{"SEP-NAME", "absent"} {
		_, expected, err := client.FindEndpointID(context.Background(), projectID, name)
		require.NoError(t, err)

		before := len(server.Requests())
		exists, err := client.EndpointExists(context.Background(), projectID, name)
		require.NoError(t, err)
		require.Equal(t, expected, exists)
		require.Len(t, server.Requests(), before+1)

		server.AddEndpoint(projectID, "SEP-NAME")
	}
}

func Test_CreateAppCenterEndpoint(t *testing.T) {
	client, server := newTestClient(t)
	projectID := server.AddProject("p")
	generated := uuid.MustParse("6f3f1f0e-8d5e-4bb5-93f3-0e5cf4b0a0d1")
	client.NewID = func() uuid.UUID { return generated }

	id, err := client.CreateEndpoint(context.Background(), projectID, "SEP-NAME", vsts.AppCenterCredential("secretValue"))
	require.NoError(t, err)
	require.Equal(t, generated, id)

	created := server.RequestsTo(vststest.RouteCreateServiceEndpoint)
	require.Len(t, created, 1)
	require.Equal(t, "/defaultcollection/"+projectID.String()+"/_apis/distributedtask/serviceendpoints/"+generated.String(), created[0].Path)
	require.Equal(t, "api-version=2.2-preview.1", created[0].RawQuery)

	body := gjson.ParseBytes(created[0].Body)
	require.Equal(t, generated.String(), body.Get("id").String())
	require.Equal(t, "SEP-NAME", body.Get("name").String())
	require.Equal(t, "vsmobilecenter", body.Get("type").String())
	require.Equal(t, "https://api.mobile.azure.com/v0.1", body.Get("url").String())
	require.Equal(t, "Token", body.Get("authorization.scheme").String())
	require.Equal(t, "secretValue", body.Get("authorization.parameters.apitoken").String())
	require.True(t, body.Get("description").Exists())
	require.Equal(t, gjson.Null, body.Get("administratorsGroup").Type)
	require.Equal(t, gjson.Null, body.Get("readersGroup").Type)
	require.Equal(t, gjson.Null, body.Get("groupScopeId").Type)

	require.Len(t, server.Endpoints(projectID), 1)
}

func Test_CreateSonarQubeEndpoint(t *testing.T) {
	client, server := newTestClient(t)
	projectID := server.AddProject("p")

	cred := vsts.SonarQubeCredential("https://sonar.example.com", "admin", "s3cr3t")
	id, err := client.CreateEndpoint(context.Background(), projectID, "sonar", cred)
	require.NoError(t, err)

	body := gjson.ParseBytes(server.RequestsTo(vststest.RouteCreateServiceEndpoint)[0].Body)
	require.Equal(t, id.String(), body.Get("id").String())
	require.Equal(t, "generic", body.Get("type").String())
	require.Equal(t, "https://sonar.example.com", body.Get("url").String())
	require.Equal(t, "UsernamePassword", body.Get("authorization.scheme").String())
	require.Equal(t, "admin", body.Get("authorization.parameters.username").String())
	require.Equal(t, "s3cr3t", body.Get("authorization.parameters.password").String())
}

func Test_CreateEndpointReturnsRemoteID(t *testing.T) {
	client, server := newTestClient(t)
	projectID := server.AddProject("p")
	remoteID := uuid.New()
	server.EchoCreatedID(remoteID)

	id, err := client.CreateEndpoint(context.Background(), projectID, "SEP-NAME", vsts.AppCenterCredential("t"))
	require.NoError(t, err)
	require.Equal(t, remoteID, id)
}

func Test_CreateEndpointInvalidCredential(t *testing.T) {
	client, server := newTestClient(t)
	projectID := server.AddProject("p")

	_, err := client.CreateEndpoint(context.Background(), projectID, "SEP-NAME", vsts.AppCenterCredential(""))
	require.Error(t, err)

	_, err = client.CreateEndpoint(context.Background(), projectID, "SEP-NAME", vsts.SonarQubeCredential("not a url", "u", "p"))
	require.Error(t, err)

	require.Empty(t, server.Requests())
}

func Test_CreateEndpointConflict(t *testing.T) {
	client, server := newTestClient(t)
	projectID := server.AddProject("p")
	server.AddEndpoint(projectID, "SEP-NAME")

	_, err := client.CreateEndpoint(context.Background(), projectID, "SEP-NAME", vsts.AppCenterCredential("t"))
	status, ok := httpx.StatusCode(err)
	require.True(t, ok)
	require.Equal(t, http.StatusConflict, status)
}

func Test_DeleteEndpoint(t *testing.T) {
	client, server := newTestClient(t)
	projectID := server.AddProject("p")
	endpointID := server.AddEndpoint(projectID, "SEP-NAME")

	require.NoError(t, client.DeleteEndpoint(context.Background(), projectID, endpointID))
	require.Empty(t, server.Endpoints(projectID))

	deleted := server.RequestsTo(vststest.RouteDeleteServiceEndpoint)
	require.Len(t, deleted, 1)
	require.Equal(t, "/defaultcollection/"+projectID.String()+"/_apis/serviceendpoint/endpoints/"+endpointID.String(), deleted[0].Path)
	require.Equal(t, "api-version=4.1-preview.1", deleted[0].RawQuery)

	err := client.DeleteEndpoint(context.Background(), projectID, endpointID)
	status, ok := httpx.StatusCode(err)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, status)
}

func Test_ToggleResultString(t *testing.T) {
	id := uuid.MustParse("6f3f1f0e-8d5e-4bb5-93f3-0e5cf4b0a0d1")

	created := &vsts.ToggleResult{Action: vsts.ActionCreated, EndpointID: id, EndpointName: "SEP-NAME"}
	require.Equal(t, "Created service endpoint 'SEP-NAME' with id: 6f3f1f0e-8d5e-4bb5-93f3-0e5cf4b0a0d1", created.String())

	deleted := &vsts.ToggleResult{Action: vsts.ActionDeleted, EndpointID: id, EndpointName: "SEP-NAME"}
	require.Equal(t, "Deleted service endpoint 'SEP-NAME' with id: 6f3f1f0e-8d5e-4bb5-93f3-0e5cf4b0a0d1", deleted.String())
}
