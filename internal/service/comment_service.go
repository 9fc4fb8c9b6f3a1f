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
	"library-board-api/internal/repository"
	"library-board-api/internal/response"
)

// CommentService defines the interface for comment business logic
type CommentService interface {
	CreateComment(ctx context.Context, postID uuid.UUID, req *dto.CreateCommentRequest, authorEmail string) (*dto.CommentResponse, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]dto.CommentResponse, error)
	UpdateComment(ctx context.Context, commentID uuid.UUID, authorEmail string, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, commentID uuid.UUID, authorEmail string) error
}

// commentServiceImpl is the implementation of CommentService
type commentServiceImpl struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	memberRepo  repository.MemberRepository
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewCommentService creates a new instance of CommentService
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	memberRepo repository.MemberRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) CommentService {
	return &commentServiceImpl{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		memberRepo:  memberRepo,
		metrics:     m,
		logger:      logger,
	}
}

// CreateComment attaches a comment to a post. Post deletion does not cascade
// to comments, so the parent lookup deliberately ignores the post's status.
func (s *commentServiceImpl) CreateComment(ctx context.Context, postID uuid.UUID, req *dto.CreateCommentRequest, authorEmail string) (*dto.CommentResponse, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Post not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch post", err.Error())
	}

	author, err := s.memberRepo.FindByEmail(ctx, authorEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Member not found", authorEmail)
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to resolve author", err.Error())
	}

	comment := &domain.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Content:  req.Content,
		Status:   domain.StatusActive,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create comment", err.Error())
	}
	comment.Author = *author

	if s.metrics != nil {
		s.metrics.IncrementCommentCreated()
	}
	s.logger.Info("Comment created",
		zap.String("comment_id", comment.ID.String()),
		zap.String("post_id", postID.String()),
		zap.String("author", authorEmail),
	)

	return toCommentResponse(comment), nil
}

// ListComments returns the ACTIVE comments of a post oldest first
func (s *commentServiceImpl) ListComments(ctx context.Context, postID uuid.UUID) ([]dto.CommentResponse, error) {
	comments, err := s.commentRepo.FindActiveByPostID(ctx, postID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch comments", err.Error())
	}
	items := make([]dto.CommentResponse, len(comments))
	for i, c := range comments {
		items[i] = *toCommentResponse(c)
	}
	return items, nil
}

// UpdateComment replaces the content of an ACTIVE comment. Updating a deleted
// comment is a distinct failure from updating a missing one.
func (s *commentServiceImpl) UpdateComment(ctx context.Context, commentID uuid.UUID, authorEmail string, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeCommentOwner(comment, authorEmail); err != nil {
		return nil, err
	}
	if comment.Status == domain.StatusDeleted {
		return nil, response.NewAppError(response.ErrCodeAlreadyDeleted, "Comment is already deleted", "")
	}

	comment.Content = req.Content
	if err := s.commentRepo.Save(ctx, comment); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update comment", err.Error())
	}
	return toCommentResponse(comment), nil
}

// DeleteComment flips the comment to DELETED. Deleting an already deleted
// comment succeeds quietly; only a missing comment or a foreign author fails.
func (s *commentServiceImpl) DeleteComment(ctx context.Context, commentID uuid.UUID, authorEmail string) error {
	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return err
	}
	if err := s.authorizeCommentOwner(comment, authorEmail); err != nil {
		return err
	}

	comment.Delete()
	if err := s.commentRepo.Save(ctx, comment); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete comment", err.Error())
	}
	s.logger.Info("Comment deleted",
		zap.String("comment_id", commentID.String()),
		zap.String("author", authorEmail),
	)
	return nil
}

func (s *commentServiceImpl) findComment(ctx context.Context, commentID uuid.UUID) (*domain.Comment, error) {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Comment not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch comment", err.Error())
	}
	return comment, nil
}

func (s *commentServiceImpl) authorizeCommentOwner(comment *domain.Comment, callerEmail string) error {
	if comment.Author.Email != callerEmail {
		s.logger.Warn("Rejected mutation by non-owner",
			zap.String("kind", "comment"),
			zap.String("id", comment.ID.String()),
			zap.String("caller", callerEmail),
		)
		return response.NewAppError(response.ErrCodeForbidden, "Only the author may modify this comment", "")
	}
	return nil
}

func toCommentResponse(c *domain.Comment) *dto.CommentResponse {
	return &dto.CommentResponse{
		ID:         c.ID,
		PostID:     c.PostID,
		AuthorName: c.Author.Name,
		Content:    c.Content,
		LikeCount:  c.LikeCount,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
