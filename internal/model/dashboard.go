package model

// Project is an external line-of-business application reachable from the main menu.
type Project struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	Permissions []string `json:"permissions"`
}

// Dashboard is the main menu payload: the current user and their projects.
type Dashboard struct {
	User     User      `json:"user"`
	Projects []Project `json:"projects"`
}

// ProjectURL is the launch address of a project.
type ProjectURL struct {
	URL       string `json:"url"`
	ProjectID string `json:"project_id"`
}
