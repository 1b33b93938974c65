package dto

type CreatePromptRequestDTO struct {
	Title   string   `json:"title" example:"Summarize article"`
	Content string   `json:"content" example:"Summarize the following text in three bullet points."`
	Tags    []string `json:"tags"`
}

// UpdatePromptRequestDTO 는 지정된 필드만 변경한다.
type UpdatePromptRequestDTO struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
}

type ImportPromptRequestDTO struct {
	URL   string   `json:"url" example:"https://example.com/blog/post"`
	Title string   `json:"title,omitempty"`
	Tags  []string `json:"tags"`
}
