package handler

type EnrollResponse struct {
	Message      string `json:"message"`
	EnrollmentID string `json:"enrollmentId"`
	IndexSynced  bool   `json:"indexSynced"`
}

type ProgressResponse struct {
	Message  string `json:"message"`
	Progress int    `json:"progress"`
}

type ReconcileResponse struct {
	Added int `json:"added"`
}
