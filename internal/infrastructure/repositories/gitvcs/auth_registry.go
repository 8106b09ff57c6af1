package gitvcs

import (
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// AuthFactory builds the transport authentication for one URL scheme.
// A nil method with a nil error means the transport needs no authentication.
type AuthFactory func(creds *entities.Credentials) (transport.AuthMethod, error)

// AuthRegistry selects how to authenticate against a remote from its URL scheme.
type AuthRegistry struct {
	factories map[string]AuthFactory
}

// NewAuthRegistry creates an empty auth registry.
func NewAuthRegistry() *AuthRegistry {
	return &AuthRegistry{
		factories: make(map[string]AuthFactory),
	}
}

// NewDefaultAuthRegistry registers the schemes go-git can talk to.
func NewDefaultAuthRegistry() *AuthRegistry {
	reg := NewAuthRegistry()
	reg.Register("http", basicAuth)
	reg.Register("https", basicAuth)
	reg.Register("ssh", publicKeysAuth)
	reg.Register("file", noAuth)
	reg.Register("git", noAuth)
	return reg
}

// Register adds a factory under the given scheme (e.g. "https").
func (r *AuthRegistry) Register(scheme string, factory AuthFactory) {
	r.factories[scheme] = factory
}

// Get returns the authentication method for the scheme.
func (r *AuthRegistry) Get(scheme string, creds *entities.Credentials) (transport.AuthMethod, error) {
	factory, ok := r.factories[scheme]
	if !ok {
		return nil, fmt.Errorf("unsupported remote scheme: %q", scheme)
	}
	return factory(creds)
}

// ForURL parses the remote URL and returns the matching authentication method.
func (r *AuthRegistry) ForURL(url string, creds *entities.Credentials) (transport.AuthMethod, error) {
	endpoint, err := transport.NewEndpoint(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remote URL %q: %w", url, err)
	}
	return r.Get(endpoint.Protocol, creds)
}

// Names returns the registered schemes, sorted.
func (r *AuthRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func basicAuth(creds *entities.Credentials) (transport.AuthMethod, error) {
	if creds.IsEmpty() || (creds.Username == "" && creds.Password == "") {
		return nil, nil //nolint:nilnil // anonymous access
	}
	username := creds.Username
	if username == "" {
		// token based hosts accept any non-empty user name
		username = "modelgit"
	}
	return &githttp.BasicAuth{Username: username, Password: creds.Password}, nil
}

func publicKeysAuth(creds *entities.Credentials) (transport.AuthMethod, error) {
	if creds.IsEmpty() || creds.PrivateKeyFile == "" {
		return nil, nil //nolint:nilnil // falls back to the ssh agent inside go-git
	}
	user := creds.Username
	if user == "" {
		user = gitssh.DefaultUsername
	}
	keys, err := gitssh.NewPublicKeysFromFile(user, creds.PrivateKeyFile, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to load ssh key %q: %w", creds.PrivateKeyFile, err)
	}
	return keys, nil
}

func noAuth(*entities.Credentials) (transport.AuthMethod, error) {
	return nil, nil //nolint:nilnil // local and anonymous transports
}
