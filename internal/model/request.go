package model

type RegisterRequest struct {
	Username string `json:"username"`
}

type UpdateAvatarRequest struct {
	AvatarURL string `json:"avatarUrl"`
}

type CreatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type UpdatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type CreateCommentRequest struct {
	PostID  int64  `json:"postId"`
	Content string `json:"content"`
}
