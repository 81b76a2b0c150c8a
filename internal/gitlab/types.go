package gitlab

// InstanceConfiguration identifies one GitLab instance reachable by the caller.
type InstanceConfiguration struct {
	Label     string
	BaseURL   string
	Token     string
	VerifySSL bool
}

// NamespaceRecord mirrors the namespace object embedded in project payloads.
type NamespaceRecord struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	FullPath string `json:"full_path"`
}

// ProjectRecord mirrors a single project payload returned by the GitLab
// projects endpoint. Only the fields consumed by normalization are decoded.
type ProjectRecord struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	PathWithNamespace string          `json:"path_with_namespace"`
	WebURL            string          `json:"web_url"`
	Visibility        string          `json:"visibility"`
	Namespace         NamespaceRecord `json:"namespace"`
}

// Project is the canonical normalized project record. Path holds the full
// namespace-qualified path and serves as the comparison key across instances.
type Project struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Group      string `json:"group"`
	Path       string `json:"path"`
	WebURL     string `json:"web_url"`
	Visibility string `json:"visibility"`
}
