// Package service implements the content lifecycle of posts, comments and
// their attachments. Every operation takes the caller's identity explicitly;
// nothing is read from ambient state.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"library-board-api/internal/domain"
	"library-board-api/internal/dto"
	"library-board-api/internal/metrics"
	"library-board-api/internal/pagination"
	"library-board-api/internal/repository"
	"library-board-api/internal/response"
	"library-board-api/internal/storage"
)

// postUploadCategory is the storage bucket for post attachments
const postUploadCategory = "posts"

// popularLimit is the number of posts served by the popular listing
const popularLimit = 10

// ViewRanker tracks post popularity on the read path. Bump must be
// best-effort; TopN returns post ids best first.
type ViewRanker interface {
	Bump(ctx context.Context, postID uuid.UUID)
	TopN(ctx context.Context, n int) ([]uuid.UUID, error)
	Remove(ctx context.Context, postID uuid.UUID)
}

// PostService defines the interface for post business logic
type PostService interface {
	CreatePost(ctx context.Context, req *dto.CreatePostRequest, uploads []*storage.Upload, authorEmail string) (*dto.CreatePostResponse, error)
	GetPostDetail(ctx context.Context, postID uuid.UUID) (*dto.PostResponse, error)
	GetPostForEdit(ctx context.Context, postID uuid.UUID, authorEmail string) (*dto.PostResponse, error)
	UpdatePost(ctx context.Context, postID uuid.UUID, authorEmail string, req *dto.UpdatePostRequest, uploads []*storage.Upload) (*dto.PostResponse, error)
	DeletePost(ctx context.Context, postID uuid.UUID, authorEmail string) error
	ListPosts(ctx context.Context, page, pageSize int) (*dto.PostListResponse, error)
	ListPopularPosts(ctx context.Context) ([]dto.PostListItem, error)
}

// postServiceImpl is the implementation of PostService
type postServiceImpl struct {
	db             *gorm.DB
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	attachmentRepo repository.AttachmentRepository
	memberRepo     repository.MemberRepository
	store          *storage.FileStore
	ranker         ViewRanker
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// NewPostService creates a new instance of PostService
func NewPostService(
	db *gorm.DB,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	attachmentRepo repository.AttachmentRepository,
	memberRepo repository.MemberRepository,
	store *storage.FileStore,
	ranker ViewRanker,
	m *metrics.Metrics,
	logger *zap.Logger,
) PostService {
	return &postServiceImpl{
		db:             db,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		attachmentRepo: attachmentRepo,
		memberRepo:     memberRepo,
		store:          store,
		ranker:         ranker,
		metrics:        m,
		logger:         logger,
	}
}

// CreatePost stores the non-empty uploads, then persists the post and its
// attachment metadata in one transaction. A failed upload or a failed commit
// leaves no partially persisted post; files already on disk are removed
// best-effort.
func (s *postServiceImpl) CreatePost(ctx context.Context, req *dto.CreatePostRequest, uploads []*storage.Upload, authorEmail string) (*dto.CreatePostResponse, error) {
	author, err := s.memberRepo.FindByEmail(ctx, authorEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Member not found", authorEmail)
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to resolve author", err.Error())
	}

	category := req.Category
	if category == "" {
		category = domain.CategoryFree
	}
	if !domain.IsValidCategory(category) {
		return nil, response.NewAppError(response.ErrCodeValidation, "Unknown post category", string(category))
	}

	attachments, err := s.storeUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		Title:    req.Title,
		Content:  req.Content,
		Category: category,
		AuthorID: author.ID,
		Status:   domain.StatusActive,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.postRepo.WithTx(tx).Create(ctx, post); err != nil {
			return err
		}
		attachmentRepo := s.attachmentRepo.WithTx(tx)
		for i := range attachments {
			attachments[i].PostID = post.ID
			if err := attachmentRepo.Create(ctx, &attachments[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.removeStoredFiles(ctx, attachments)
		s.logger.Error("Failed to create post",
			zap.String("author", authorEmail),
			zap.Error(err),
		)
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create post", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementPostCreated()
	}
	s.logger.Info("Post created",
		zap.String("post_id", post.ID.String()),
		zap.String("author", authorEmail),
		zap.Int("attachments", len(attachments)),
	)

	return &dto.CreatePostResponse{ID: post.ID}, nil
}

// GetPostDetail returns an ACTIVE post and increments its view count by
// exactly 1. A DELETED post is indistinguishable from an absent one.
func (s *postServiceImpl) GetPostDetail(ctx context.Context, postID uuid.UUID) (*dto.PostResponse, error) {
	post, err := s.findActivePost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.postRepo.IncrementViewCount(ctx, postID); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to record view", err.Error())
	}
	post.ViewCount++

	if s.ranker != nil {
		s.ranker.Bump(ctx, postID)
	}

	return s.toPostResponse(ctx, post)
}

// GetPostForEdit returns an ACTIVE post for its author without counting a
// view. Anyone else gets FORBIDDEN.
func (s *postServiceImpl) GetPostForEdit(ctx context.Context, postID uuid.UUID, authorEmail string) (*dto.PostResponse, error) {
	post, err := s.findActivePost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(post.Author.Email, authorEmail, "post", postID); err != nil {
		return nil, err
	}
	return s.toPostResponse(ctx, post)
}

// UpdatePost applies field changes, removes the attachments named by
// DeleteFileIDs (physical delete attempted before the metadata row goes) and
// appends the new uploads. If storing any new upload fails, nothing is
// persisted.
func (s *postServiceImpl) UpdatePost(ctx context.Context, postID uuid.UUID, authorEmail string, req *dto.UpdatePostRequest, uploads []*storage.Upload) (*dto.PostResponse, error) {
	post, err := s.findActivePost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(post.Author.Email, authorEmail, "post", postID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Category != nil {
		if !domain.IsValidCategory(*req.Category) {
			return nil, response.NewAppError(response.ErrCodeValidation, "Unknown post category", string(*req.Category))
		}
		post.Category = *req.Category
	}

	// All new uploads must land before anything is persisted
	newAttachments, err := s.storeUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postRepo := s.postRepo.WithTx(tx)
		attachmentRepo := s.attachmentRepo.WithTx(tx)

		if err := postRepo.Save(ctx, post); err != nil {
			return err
		}

		if len(req.DeleteFileIDs) > 0 {
			existing, err := attachmentRepo.FindByPostID(ctx, post.ID)
			if err != nil {
				return err
			}
			byID := make(map[uuid.UUID]*domain.Attachment, len(existing))
			for _, a := range existing {
				byID[a.ID] = a
			}
			for _, raw := range req.DeleteFileIDs {
				fileID, err := uuid.Parse(raw)
				if err != nil {
					continue
				}
				att, ok := byID[fileID]
				if !ok {
					// Ids that do not belong to this post are ignored
					continue
				}
				// Physical delete first; its outcome never blocks the
				// metadata removal
				s.store.Delete(ctx, att.FilePath, att.StoredName)
				if err := attachmentRepo.Delete(ctx, att.ID); err != nil {
					return err
				}
			}
		}

		for i := range newAttachments {
			newAttachments[i].PostID = post.ID
			if err := attachmentRepo.Create(ctx, &newAttachments[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.removeStoredFiles(ctx, newAttachments)
		s.logger.Error("Failed to update post",
			zap.String("post_id", postID.String()),
			zap.Error(err),
		)
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update post", err.Error())
	}

	s.logger.Info("Post updated",
		zap.String("post_id", postID.String()),
		zap.Int("added_files", len(newAttachments)),
		zap.Int("deleted_files", len(req.DeleteFileIDs)),
	)

	return s.toPostResponse(ctx, post)
}

// DeletePost flips the post to DELETED. Attachments and their files stay;
// the retention purge job owns their eventual removal. A second delete fails
// with NOT_FOUND because the read path no longer finds the post.
func (s *postServiceImpl) DeletePost(ctx context.Context, postID uuid.UUID, authorEmail string) error {
	post, err := s.findActivePost(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.authorizeOwner(post.Author.Email, authorEmail, "post", postID); err != nil {
		return err
	}

	post.Delete()
	if err := s.postRepo.Save(ctx, post); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete post", err.Error())
	}

	if s.ranker != nil {
		s.ranker.Remove(ctx, postID)
	}
	s.logger.Info("Post deleted",
		zap.String("post_id", postID.String()),
		zap.String("author", authorEmail),
	)
	return nil
}

// ListPosts returns one page of ACTIVE posts newest first, plus the pager
// window.
func (s *postServiceImpl) ListPosts(ctx context.Context, page, pageSize int) (*dto.PostListResponse, error) {
	if pageSize <= 0 {
		return nil, response.NewAppError(response.ErrCodeValidation, "Page size must be positive", "")
	}
	if page < 1 {
		page = 1
	}

	posts, total, err := s.postRepo.FindActivePaged(ctx, pagination.Offset(page, pageSize), pageSize)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch posts", err.Error())
	}

	window, err := pagination.NewWindow(page, pageSize, total)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeValidation, "Page size must be positive", "")
	}

	items := make([]dto.PostListItem, len(posts))
	for i, p := range posts {
		items[i] = toPostListItem(p)
	}
	return &dto.PostListResponse{Items: items, Window: window}, nil
}

// ListPopularPosts returns the most viewed ACTIVE posts according to the
// ranker, best first.
func (s *postServiceImpl) ListPopularPosts(ctx context.Context) ([]dto.PostListItem, error) {
	if s.ranker == nil {
		return []dto.PostListItem{}, nil
	}
	ids, err := s.ranker.TopN(ctx, popularLimit)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch post ranking", err.Error())
	}
	if len(ids) == 0 {
		return []dto.PostListItem{}, nil
	}

	posts, err := s.postRepo.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch posts", err.Error())
	}
	byID := make(map[uuid.UUID]*domain.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}

	// Ranking order wins; deleted posts fall out
	items := make([]dto.PostListItem, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			items = append(items, toPostListItem(p))
		}
	}
	return items, nil
}

// findActivePost loads an ACTIVE post or maps the miss to NOT_FOUND
func (s *postServiceImpl) findActivePost(ctx context.Context, postID uuid.UUID) (*domain.Post, error) {
	post, err := s.postRepo.FindActiveByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Post not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch post", err.Error())
	}
	return post, nil
}

// authorizeOwner enforces the author-only mutation rule with a
// case-sensitive identity match. Denials are security-relevant and logged.
func (s *postServiceImpl) authorizeOwner(ownerEmail, callerEmail, kind string, id uuid.UUID) error {
	if ownerEmail != callerEmail {
		s.logger.Warn("Rejected mutation by non-owner",
			zap.String("kind", kind),
			zap.String("id", id.String()),
			zap.String("caller", callerEmail),
		)
		return response.NewAppError(response.ErrCodeForbidden, "Only the author may modify this "+kind, "")
	}
	return nil
}

// storeUploads persists every non-empty upload and returns the metadata rows
// to insert. On a mid-way failure the files stored so far are removed
// best-effort and the whole batch fails.
func (s *postServiceImpl) storeUploads(ctx context.Context, uploads []*storage.Upload) ([]domain.Attachment, error) {
	var attachments []domain.Attachment
	for _, upload := range uploads {
		if upload.IsEmpty() {
			continue
		}
		stored, err := s.store.Store(ctx, upload, postUploadCategory)
		if err != nil {
			s.removeStoredFiles(ctx, attachments)
			if s.metrics != nil {
				s.metrics.IncrementStorageError()
			}
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.IncrementAttachmentStored()
		}
		attachments = append(attachments, domain.Attachment{
			OriginalName: upload.Filename,
			StoredName:   stored.StoredName,
			FilePath:     stored.Path,
			FileSize:     stored.Size,
			Extension:    stored.Extension,
			MimeType:     upload.ContentType,
		})
	}
	return attachments, nil
}

// removeStoredFiles best-effort deletes the physical files of the given rows
func (s *postServiceImpl) removeStoredFiles(ctx context.Context, attachments []domain.Attachment) {
	for _, a := range attachments {
		s.store.Delete(ctx, a.FilePath, a.StoredName)
	}
}

// toPostResponse builds the detail view with attachments and comment count
func (s *postServiceImpl) toPostResponse(ctx context.Context, post *domain.Post) (*dto.PostResponse, error) {
	attachments, err := s.attachmentRepo.FindByPostID(ctx, post.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Failed to fetch attachments for post",
			zap.String("post_id", post.ID.String()),
			zap.Error(err),
		)
	}

	commentCount, err := s.commentRepo.CountActiveByPostID(ctx, post.ID)
	if err != nil {
		s.logger.Warn("Failed to count comments for post",
			zap.String("post_id", post.ID.String()),
			zap.Error(err),
		)
	}

	attachmentDTOs := make([]dto.AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		attachmentDTOs = append(attachmentDTOs, dto.AttachmentResponse{
			ID:            a.ID,
			OriginalName:  a.OriginalName,
			FileSize:      a.FileSize,
			Extension:     a.Extension,
			MimeType:      a.MimeType,
			DownloadCount: a.DownloadCount,
			UploadedAt:    a.CreatedAt,
		})
	}

	return &dto.PostResponse{
		ID:           post.ID,
		Title:        post.Title,
		Content:      post.Content,
		Category:     post.Category,
		AuthorName:   post.Author.Name,
		AuthorEmail:  post.Author.Email,
		ViewCount:    post.ViewCount,
		LikeCount:    post.LikeCount,
		CommentCount: commentCount,
		Attachments:  attachmentDTOs,
		CreatedAt:    post.CreatedAt,
		UpdatedAt:    post.UpdatedAt,
	}, nil
}

// toPostListItem converts a post row to its listing shape
func toPostListItem(p *domain.Post) dto.PostListItem {
	return dto.PostListItem{
		ID:         p.ID,
		Title:      p.Title,
		Category:   p.Category,
		AuthorName: p.Author.Name,
		ViewCount:  p.ViewCount,
		LikeCount:  p.LikeCount,
		CreatedAt:  p.CreatedAt,
	}
}
