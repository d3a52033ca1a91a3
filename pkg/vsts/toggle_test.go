package vsts_test

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/flant/negentropy/sepctl/internal/vststest"
	"github.com/flant/negentropy/sepctl/pkg/httpx"
	"github.com/flant/negentropy/sepctl/pkg/vsts"
)

var _ = Describe("Toggle", func() {
	const endpointName = "SEP-NAME"

	var (
		server    *vststest.Server
		client    *vsts.Client
		projectID uuid.UUID
		cred      vsts.Credential
	)

	BeforeEach(func() {
		server = vststest.NewServer(testToken)
		projectID = server.AddProject("YOUR-PROJECT")
		cred = vsts.AppCenterCredential("secretValue")

		var err error
		client, err = vsts.NewClientForAccount(server.URL, testToken)
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	Context("endpoint is absent", func() {
		It("creates the endpoint with a generated id", func() {
			generated := uuid.New()
			client.NewID = func() uuid.UUID { return generated }

			result, err := client.Toggle(context.Background(), "YOUR-PROJECT", endpointName, cred)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Action).To(Equal(vsts.ActionCreated))
			Expect(result.EndpointID).To(Equal(generated))
			Expect(result.ProjectID).To(Equal(projectID))
			Expect(server.RequestsTo(vststest.RouteCreateServiceEndpoint)).To(HaveLen(1))
			Expect(server.RequestsTo(vststest.RouteDeleteServiceEndpoint)).To(BeEmpty())
			Expect(server.Endpoints(projectID)).To(HaveLen(1))
		})
	})

	Context("endpoint is present", func() {
		It("deletes exactly the existing endpoint and creates nothing", func() {
			existing := server.AddEndpoint(projectID, endpointName)

			result, err := client.Toggle(context.Background(), "YOUR-PROJECT", endpointName, cred)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Action).To(Equal(vsts.ActionDeleted))
			Expect(result.EndpointID).To(Equal(existing))
			Expect(server.RequestsTo(vststest.RouteCreateServiceEndpoint)).To(BeEmpty())

			deleted := server.RequestsTo(vststest.RouteDeleteServiceEndpoint)
			Expect(deleted).To(HaveLen(1))
			Expect(deleted[0].Path).To(HaveSuffix("/" + existing.String()))
			Expect(server.Endpoints(projectID)).To(BeEmpty())
		})
	})

	Context("project lookup fails", func() {
		It("returns the remote error and stops", func() {
			server.Fail(vststest.RouteGetProject, http.StatusNotFound, `{"message":"no such project"}`)

			result, err := client.Toggle(context.Background(), "YOUR-PROJECT", endpointName, cred)

			Expect(result).To(BeNil())
			var remoteErr *httpx.RemoteCallError
			Expect(errors.As(err, &remoteErr)).To(BeTrue())
			Expect(remoteErr.StatusCode).To(Equal(http.StatusNotFound))
			Expect(remoteErr.Body).To(Equal(`{"message":"no such project"}`))

			Expect(server.Requests()).To(HaveLen(1))
			Expect(server.Requests()[0].Route).To(Equal(vststest.RouteGetProject))
		})
	})

	Context("delete fails", func() {
		It("returns the remote error without further calls", func() {
			server.AddEndpoint(projectID, endpointName)
			server.Fail(vststest.RouteDeleteServiceEndpoint, http.StatusForbidden, "denied")

			_, err := client.Toggle(context.Background(), "YOUR-PROJECT", endpointName, cred)

			status, ok := httpx.StatusCode(err)
			Expect(ok).To(BeTrue())
			Expect(status).To(Equal(http.StatusForbidden))
			Expect(server.Requests()).To(HaveLen(3))
			Expect(server.Endpoints(projectID)).To(HaveLen(1))
		})
	})

	It("alternates between create and delete", func() {
		actions := make([]vsts.Action, 0)
		for i := 0; i < 4; i++ {
			result, err := client.Toggle(context.Background(), "YOUR-PROJECT", endpointName, cred)
			Expect(err).ToNot(HaveOccurred())
			actions = append(actions, result.Action)
		}

		Expect(actions).To(Equal([]vsts.Action{
			vsts.ActionCreated, vsts.ActionDeleted, vsts.ActionCreated, vsts.ActionDeleted,
		}))
	})

	It("issues resolve, list and create sequentially", func() {
		_, err := client.Toggle(context.Background(), "YOUR-PROJECT", endpointName, cred)
		Expect(err).ToNot(HaveOccurred())

		routes := make([]vststest.Route, 0)
		for _, r := range server.Requests() {
			routes = append(routes, r.Route)
		}
		Expect(routes).To(Equal([]vststest.Route{
			vststest.RouteGetProject,
			vststest.RouteListServiceEndpoints,
			vststest.RouteCreateServiceEndpoint,
		}))
	})
})
