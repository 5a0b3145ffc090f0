package content

const (
	CollectionPosts        = "posts"
	CollectionRepositories = "repositories"
	ValueProfile           = "profile"
)

// Names lists every cache name the service owns, in invalidation order.
var Names = []string{CollectionPosts, CollectionRepositories, ValueProfile}

type PostMeta struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Date        string   `yaml:"date" json:"date"`
	Tags        []string `yaml:"tags" json:"tags"`
	IsPreview   bool     `yaml:"is-preview" json:"is_preview"`
	HeaderImage bool     `yaml:"header-image" json:"header_image"`
}

type Post struct {
	PostMeta
	Slug    string `json:"slug"`
	Content string `json:"content"`
}

type Repository struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	Language    string `json:"language,omitempty"`
	UpdatedAt   string `json:"updated_at"`
	Readme      string `json:"readme,omitempty"`
}

type Profile struct {
	Login       string `json:"login"`
	Name        string `json:"name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	HTMLURL     string `json:"html_url"`
	Followers   int    `json:"followers"`
	PublicRepos int    `json:"public_repos"`
}

type TocItem struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
	Text  string `json:"text"`
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
