package metrics

// IncrementPostCreated increments the post creation counter
func (m *Metrics) IncrementPostCreated() {
	m.safeExecute("IncrementPostCreated", func() {
		m.PostCreatedTotal.Inc()
	})
}

// IncrementCommentCreated increments the comment creation counter
func (m *Metrics) IncrementCommentCreated() {
	m.safeExecute("IncrementCommentCreated", func() {
		m.CommentCreatedTotal.Inc()
	})
}

// IncrementAttachmentStored increments the stored attachment counter
func (m *Metrics) IncrementAttachmentStored() {
	m.safeExecute("IncrementAttachmentStored", func() {
		m.AttachmentStoredTotal.Inc()
	})
}

// IncrementAttachmentDownload increments the served download counter
func (m *Metrics) IncrementAttachmentDownload() {
	m.safeExecute("IncrementAttachmentDownload", func() {
		m.AttachmentDownloadTotal.Inc()
	})
}

// IncrementStorageError increments the storage failure counter
func (m *Metrics) IncrementStorageError() {
	m.safeExecute("IncrementStorageError", func() {
		m.StorageErrorsTotal.Inc()
	})
}

// SetPostsTotal sets the gauge of active posts
func (m *Metrics) SetPostsTotal(count int64) {
	m.safeExecute("SetPostsTotal", func() {
		m.PostsTotal.Set(float64(count))
	})
}

// SetAttachmentsTotal sets the gauge of stored attachments
func (m *Metrics) SetAttachmentsTotal(count int64) {
	m.safeExecute("SetAttachmentsTotal", func() {
		m.AttachmentsTotal.Set(float64(count))
	})
}
