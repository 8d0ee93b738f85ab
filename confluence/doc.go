// Package confluence provides a client for the Confluence Cloud REST API.
//
// Every operation is described by a request value built through a
// New<Kind>Request constructor. Constructors validate their options and
// return a *ValidationError before anything reaches the network, so an
// existing request is always well formed.
//
// # Architecture
//
//   - Request: a closed set of JSON and file-upload request kinds
//   - ExpandBuilder: composes the "expand" query parameter from typed namespaces
//   - Dispatcher: turns any request into one HTTP call and decodes the result
//   - Client: one method per operation, narrowing decoded values
//
// # Usage
//
//	client, err := confluence.NewAuthenticatedClient(
//		"https://example.atlassian.net/wiki",
//		confluence.BasicAuth{Email: "me@example.com", APIToken: token},
//		confluence.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	expand := confluence.NewExpandBuilder().
//		Body(confluence.BodyStorage, confluence.BodyFormat{}.Value()).
//		Version().
//		Build()
//
//	req, err := confluence.NewGetContentRequest(confluence.GetContentOptions{
//		SpaceKey: "DOCS",
//		Title:    "Release notes",
//		Expand:   expand,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	pages, err := client.GetContent(ctx, req)
//
// # Error Handling
//
//   - *ValidationError: request options were incomplete (errors.Is ErrInvalidRequest)
//   - *RequestError: the server answered with status >= 300
//   - ErrTransport: the round trip failed; the cause stays in the chain
//   - ErrDecode: a success body did not match the expected shape
//
//	var reqErr *confluence.RequestError
//	if errors.As(err, &reqErr) && reqErr.IsNotFound() {
//		// Handle missing content
//	}
package confluence
