package bitbucket

import "time"

// Wire names come from the codec: FullName is sent as full_name, UUID as
// uuid. Fields use ",omitempty" tags where they may appear in request bodies.

// Link is a hypermedia reference
type Link struct {
	Href string `json:",omitempty"`
	Name string `json:",omitempty"`
}

// Links groups the links most resources carry
type Links struct {
	Self   *Link  `json:",omitempty"`
	HTML   *Link  `json:",omitempty"`
	Avatar *Link  `json:",omitempty"`
	Diff   *Link  `json:",omitempty"`
	Clone  []Link `json:",omitempty"`
}

// User is a Bitbucket account (user or team)
type User struct {
	Type        string     `json:",omitempty"`
	UUID        string     `json:",omitempty"`
	AccountID   string     `json:",omitempty"`
	Nickname    string     `json:",omitempty"`
	DisplayName string     `json:",omitempty"`
	Username    string     `json:",omitempty"`
	CreatedOn   *time.Time `json:",omitempty"`
	Links       *Links     `json:",omitempty"`
}

// Email is an address registered to the current user
type Email struct {
	Email       string
	IsPrimary   bool
	IsConfirmed bool
	Type        string
}

// Workspace owns repositories and projects
type Workspace struct {
	UUID string `json:",omitempty"`
	Slug string `json:",omitempty"`
	Name string `json:",omitempty"`
}

// Project groups repositories inside a workspace
type Project struct {
	UUID string `json:",omitempty"`
	Key  string `json:",omitempty"`
	Name string `json:",omitempty"`
}

// BranchRef names a branch
type BranchRef struct {
	Name string `json:",omitempty"`
	Type string `json:",omitempty"`
}

// Repository is a 2.0 repository
type Repository struct {
	Type        string     `json:",omitempty"`
	UUID        string     `json:",omitempty"`
	Name        string     `json:",omitempty"`
	Slug        string     `json:",omitempty"`
	FullName    string     `json:",omitempty"`
	Description string     `json:",omitempty"`
	Language    string     `json:",omitempty"`
	SCM         string     `json:",omitempty"`
	IsPrivate   bool       `json:",omitempty"`
	ForkPolicy  string     `json:",omitempty"`
	HasIssues   bool       `json:",omitempty"`
	HasWiki     bool       `json:",omitempty"`
	Size        int64      `json:",omitempty"`
	CreatedOn   *time.Time `json:",omitempty"`
	UpdatedOn   *time.Time `json:",omitempty"`
	MainBranch  *BranchRef `json:",omitempty"`
	Owner       *User      `json:",omitempty"`
	Workspace   *Workspace `json:",omitempty"`
	Project     *Project   `json:",omitempty"`
	Links       *Links     `json:",omitempty"`
}

// Commit is a reference to a changeset
type Commit struct {
	Hash    string        `json:",omitempty"`
	Date    *time.Time    `json:",omitempty"`
	Message string        `json:",omitempty"`
	Author  *CommitAuthor `json:",omitempty"`
}

// CommitAuthor is the raw author line plus the matched account, if any
type CommitAuthor struct {
	Raw  string
	User *User
}

// Ref is a branch or tag
type Ref struct {
	Name   string  `json:",omitempty"`
	Type   string  `json:",omitempty"`
	Target *Commit `json:",omitempty"`
	Links  *Links  `json:",omitempty"`
}

// Content is marked-up text
type Content struct {
	Raw    string `json:",omitempty"`
	Markup string `json:",omitempty"`
	HTML   string `json:",omitempty"`
}

// PullRequestEndpoint is the source or destination of a pull request
type PullRequestEndpoint struct {
	Branch     BranchRef   `json:",omitempty"`
	Commit     *Commit     `json:",omitempty"`
	Repository *Repository `json:",omitempty"`
}

// Participant is a reviewer or commenter on a pull request
type Participant struct {
	User     *User
	Role     string
	Approved bool
	State    string
}

// PullRequest is a 2.0 pull request
type PullRequest struct {
	ID                int                  `json:",omitempty"`
	Title             string               `json:",omitempty"`
	Description       string               `json:",omitempty"`
	State             string               `json:",omitempty"`
	Author            *User                `json:",omitempty"`
	Source            *PullRequestEndpoint `json:",omitempty"`
	Destination       *PullRequestEndpoint `json:",omitempty"`
	CloseSourceBranch bool                 `json:",omitempty"`
	MergeCommit       *Commit              `json:",omitempty"`
	CommentCount      int                  `json:",omitempty"`
	TaskCount         int                  `json:",omitempty"`
	Reviewers         []User               `json:",omitempty"`
	Participants      []Participant        `json:",omitempty"`
	CreatedOn         *time.Time           `json:",omitempty"`
	UpdatedOn         *time.Time           `json:",omitempty"`
	Links             *Links               `json:",omitempty"`
}

// MergeOptions is the body of a merge call
type MergeOptions struct {
	Message           string `json:",omitempty"`
	CloseSourceBranch bool   `json:",omitempty"`
	MergeStrategy     string `json:",omitempty"`
}

// Inline anchors a comment to a file line
type Inline struct {
	Path string
	From *int
	To   *int
}

// Comment is a pull request or issue comment
type Comment struct {
	ID        int        `json:",omitempty"`
	Content   *Content   `json:",omitempty"`
	User      *User      `json:",omitempty"`
	Inline    *Inline    `json:",omitempty"`
	Deleted   bool       `json:",omitempty"`
	CreatedOn *time.Time `json:",omitempty"`
	UpdatedOn *time.Time `json:",omitempty"`
}

// Issue is an issue tracker entry
type Issue struct {
	ID        int        `json:",omitempty"`
	Title     string     `json:",omitempty"`
	Content   *Content   `json:",omitempty"`
	Reporter  *User      `json:",omitempty"`
	Assignee  *User      `json:",omitempty"`
	State     string     `json:",omitempty"`
	Kind      string     `json:",omitempty"`
	Priority  string     `json:",omitempty"`
	Votes     int        `json:",omitempty"`
	CreatedOn *time.Time `json:",omitempty"`
	UpdatedOn *time.Time `json:",omitempty"`
}

// PipelineState is the progress of a pipeline or step
type PipelineState struct {
	Name   string
	Type   string
	Result *PipelineResult
}

// PipelineResult is set once a pipeline completes
type PipelineResult struct {
	Name string
	Type string
}

// PipelineSelector picks a custom pipeline definition
type PipelineSelector struct {
	Type    string `json:",omitempty"`
	Pattern string `json:",omitempty"`
}

// PipelineTarget is what a pipeline builds
type PipelineTarget struct {
	Type     string            `json:",omitempty"`
	RefType  string            `json:",omitempty"`
	RefName  string            `json:",omitempty"`
	Commit   *Commit           `json:",omitempty"`
	Selector *PipelineSelector `json:",omitempty"`
}

// Pipeline is one CI run
type Pipeline struct {
	Type              string          `json:",omitempty"`
	UUID              string          `json:",omitempty"`
	BuildNumber       int             `json:",omitempty"`
	State             *PipelineState  `json:",omitempty"`
	Target            *PipelineTarget `json:",omitempty"`
	Creator           *User           `json:",omitempty"`
	CreatedOn         *time.Time      `json:",omitempty"`
	CompletedOn       *time.Time      `json:",omitempty"`
	BuildSecondsUsed  int             `json:",omitempty"`
	DurationInSeconds int             `json:",omitempty"`
}

// PipelineStep is one step of a pipeline
type PipelineStep struct {
	UUID        string
	Name        string
	State       *PipelineState
	StartedOn   *time.Time
	CompletedOn *time.Time
}

// V1User is the user object of the 1.0 API
type V1User struct {
	Username    string
	FirstName   string
	LastName    string
	DisplayName string
	IsTeam      bool
	IsStaff     bool
	Avatar      string
	ResourceURI string
}

// V1Repository is the repository object of the 1.0 API. Timestamps are
// "2006-01-02 15:04:05" strings and are left as sent.
type V1Repository struct {
	Owner          string
	Name           string
	Slug           string
	Description    string
	SCM            string
	Language       string
	IsPrivate      bool
	HasIssues      bool
	HasWiki        bool
	Size           int64
	UTCCreatedOn   string
	UTCLastUpdated string
	ResourceURI    string
	ForkOf         *V1Repository
}

// V1Account is the 1.0 users/{account} response
type V1Account struct {
	User         V1User
	Repositories []V1Repository
}

// V1Followers is the 1.0 users/{account}/followers response
type V1Followers struct {
	Count     int
	Followers []V1User
}
