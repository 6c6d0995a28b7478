package dto

// CreateBlogDTO is parsed either from a plain JSON body or from the
// "data" multipart field when images are attached.
type CreateBlogDTO struct {
	Title     string   `json:"title" binding:"required,min=3,max=200"`
	Subtitle  string   `json:"subtitle" binding:"max=300"`
	Body      string   `json:"body" binding:"required"`
	Excerpt   string   `json:"excerpt" binding:"max=500"`
	Tags      []string `json:"tags"`
	Published bool     `json:"published"`
	Location  *GeoDTO  `json:"location,omitempty"`
}

type GeoDTO struct {
	Name string  `json:"name" binding:"required"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// UpdateBlogDTO — all fields are optional pointers
type UpdateBlogDTO struct {
	Title             *string   `json:"title,omitempty"`
	Subtitle          *string   `json:"subtitle,omitempty"`
	Body              *string   `json:"body,omitempty"`
	Excerpt           *string   `json:"excerpt,omitempty"`
	Tags              *[]string `json:"tags,omitempty"`
	Published         *bool     `json:"published,omitempty"`
	Featured          *bool     `json:"featured,omitempty"`
	Location          *GeoDTO   `json:"location,omitempty"`
	RemovedImagesUrls []string  `json:"removedImagesUrls,omitempty"`
}

type AddCommentDTO struct {
	Text string `json:"text" binding:"required"`
}
