package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"library-board-api/internal/domain"
	"library-board-api/internal/dto"
	"library-board-api/internal/response"
	"library-board-api/internal/storage"
)

func newPostService(t *testing.T, postRepo *MockPostRepository, commentRepo *MockCommentRepository, attachmentRepo *MockAttachmentRepository, memberRepo *MockMemberRepository, ranker *MockViewRanker) PostService {
	t.Helper()
	var r ViewRanker
	if ranker != nil {
		r = ranker
	}
	return NewPostService(newTestDB(t), postRepo, commentRepo, attachmentRepo, memberRepo, newTestStore(t), r, nil, zap.NewNop())
}

func textUpload(name, content string) *storage.Upload {
	return &storage.Upload{
		Filename:    name,
		Size:        int64(len(content)),
		ContentType: "text/plain",
		Content:     strings.NewReader(content),
	}
}

func TestPostService_CreatePost(t *testing.T) {
	authorID := uuid.New()

	tests := []struct {
		name        string
		req         *dto.CreatePostRequest
		uploads     []*storage.Upload
		mockMember  func(*MockMemberRepository)
		mockPost    func(*MockPostRepository)
		wantErr     bool
		wantErrCode string
	}{
		{
			name: "성공: 첨부파일과 함께 게시글 생성",
			req: &dto.CreatePostRequest{
				Title:    "Test Post",
				Content:  "Test Content",
				Category: domain.CategoryFree,
			},
			uploads: []*storage.Upload{textUpload("notes.txt", "hello")},
			mockMember: func(m *MockMemberRepository) {
				m.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Member, error) {
					member := &domain.Member{Email: email, Name: "Tester"}
					member.ID = authorID
					return member, nil
				}
			},
			mockPost: func(m *MockPostRepository) {
				m.CreateFunc = func(ctx context.Context, post *domain.Post) error {
					post.ID = uuid.New()
					return nil
				}
			},
			wantErr: false,
		},
		{
			name: "성공: 카테고리 미지정시 FREE로 생성",
			req: &dto.CreatePostRequest{
				Title:   "Test Post",
				Content: "Test Content",
			},
			mockMember: func(m *MockMemberRepository) {
				m.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Member, error) {
					member := &domain.Member{Email: email}
					member.ID = authorID
					return member, nil
				}
			},
			mockPost: func(m *MockPostRepository) {
				m.CreateFunc = func(ctx context.Context, post *domain.Post) error {
					if post.Category != domain.CategoryFree {
						t.Errorf("Create() category = %v, want %v", post.Category, domain.CategoryFree)
					}
					post.ID = uuid.New()
					return nil
				}
			},
			wantErr: false,
		},
		{
			name: "실패: 존재하지 않는 회원",
			req: &dto.CreatePostRequest{
				Title:   "Test Post",
				Content: "Test Content",
			},
			mockMember: func(m *MockMemberRepository) {
				m.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Member, error) {
					return nil, gorm.ErrRecordNotFound
				}
			},
			mockPost:    func(m *MockPostRepository) {},
			wantErr:     true,
			wantErrCode: response.ErrCodeNotFound,
		},
		{
			name: "실패: 알 수 없는 카테고리",
			req: &dto.CreatePostRequest{
				Title:    "Test Post",
				Content:  "Test Content",
				Category: domain.PostCategory("GOSSIP"),
			},
			mockMember: func(m *MockMemberRepository) {
				m.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Member, error) {
					member := &domain.Member{Email: email}
					member.ID = authorID
					return member, nil
				}
			},
			mockPost:    func(m *MockPostRepository) {},
			wantErr:     true,
			wantErrCode: response.ErrCodeValidation,
		},
		{
			name: "실패: 허용되지 않는 확장자",
			req: &dto.CreatePostRequest{
				Title:   "Test Post",
				Content: "Test Content",
			},
			uploads: []*storage.Upload{textUpload("payload.exe", "MZ")},
			mockMember: func(m *MockMemberRepository) {
				m.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Member, error) {
					member := &domain.Member{Email: email}
					member.ID = authorID
					return member, nil
				}
			},
			mockPost:    func(m *MockPostRepository) {},
			wantErr:     true,
			wantErrCode: response.ErrCodeValidation,
		},
		{
			name: "실패: 게시글 저장 중 DB 에러",
			req: &dto.CreatePostRequest{
				Title:   "Test Post",
				Content: "Test Content",
			},
			mockMember: func(m *MockMemberRepository) {
				m.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Member, error) {
					member := &domain.Member{Email: email}
					member.ID = authorID
					return member, nil
				}
			},
			mockPost: func(m *MockPostRepository) {
				m.CreateFunc = func(ctx context.Context, post *domain.Post) error {
					return errors.New("database error")
				}
			},
			wantErr:     true,
			wantErrCode: response.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPostRepo := &MockPostRepository{}
			mockMemberRepo := &MockMemberRepository{}
			tt.mockPost(mockPostRepo)
			tt.mockMember(mockMemberRepo)

			service := newPostService(t, mockPostRepo, &MockCommentRepository{}, &MockAttachmentRepository{}, mockMemberRepo, nil)

			got, err := service.CreatePost(context.Background(), tt.req, tt.uploads, "author@example.com")

			if tt.wantErr {
				if err == nil {
					t.Fatal("CreatePost() error = nil, want error")
				}
				var appErr *response.AppError
				if errors.As(err, &appErr) && appErr.Code != tt.wantErrCode {
					t.Errorf("CreatePost() error code = %v, want %v", appErr.Code, tt.wantErrCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreatePost() unexpected error = %v", err)
			}
			if got == nil || got.ID == uuid.Nil {
				t.Error("CreatePost() returned no post id")
			}
		})
	}
}

func TestPostService_CreatePost_EmptyUploadSkipped(t *testing.T) {
	var createdAttachments int
	mockAttachmentRepo := &MockAttachmentRepository{
		CreateFunc: func(ctx context.Context, attachment *domain.Attachment) error {
			createdAttachments++
			return nil
		},
	}
	mockMemberRepo := &MockMemberRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.Member, error) {
			member := &domain.Member{Email: email}
			member.ID = uuid.New()
			return member, nil
		},
	}
	service := newPostService(t, &MockPostRepository{}, &MockCommentRepository{}, mockAttachmentRepo, mockMemberRepo, nil)

	uploads := []*storage.Upload{
		{Filename: "empty.txt", Size: 0, Content: strings.NewReader("")},
		textUpload("real.txt", "content"),
	}
	_, err := service.CreatePost(context.Background(), &dto.CreatePostRequest{Title: "t", Content: "c"}, uploads, "a@example.com")
	if err != nil {
		t.Fatalf("CreatePost() unexpected error = %v", err)
	}
	if createdAttachments != 1 {
		t.Errorf("attachment rows created = %d, want 1", createdAttachments)
	}
}

func TestPostService_GetPostDetail(t *testing.T) {
	postID := uuid.New()

	newActivePost := func() *domain.Post {
		post := &domain.Post{
			Title:     "Post",
			Content:   "Content",
			Category:  domain.CategoryFree,
			Status:    domain.StatusActive,
			ViewCount: 7,
			Author:    domain.Member{Email: "author@example.com", Name: "Author"},
		}
		post.ID = postID
		return post
	}

	tests := []struct {
		name          string
		mockPost      func(*MockPostRepository)
		wantErr       bool
		wantErrCode   string
		wantViewCount int64
	}{
		{
			name: "성공: 조회수 1 증가",
			mockPost: func(m *MockPostRepository) {
				m.FindActiveByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
					return newActivePost(), nil
				}
			},
			wantViewCount: 8,
		},
		{
			name: "실패: 삭제되었거나 없는 게시글",
			mockPost: func(m *MockPostRepository) {
				m.FindActiveByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
					return nil, gorm.ErrRecordNotFound
				}
			},
			wantErr:     true,
			wantErrCode: response.ErrCodeNotFound,
		},
		{
			name: "실패: 조회수 기록 실패시 조회도 실패",
			mockPost: func(m *MockPostRepository) {
				m.FindActiveByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
					return newActivePost(), nil
				}
				m.IncrementViewCountFunc = func(ctx context.Context, id uuid.UUID) error {
					return errors.New("database error")
				}
			},
			wantErr:     true,
			wantErrCode: response.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPostRepo := &MockPostRepository{}
			tt.mockPost(mockPostRepo)

			bumped := false
			ranker := &MockViewRanker{
				BumpFunc: func(ctx context.Context, id uuid.UUID) { bumped = true },
			}
			service := newPostService(t, mockPostRepo, &MockCommentRepository{}, &MockAttachmentRepository{}, &MockMemberRepository{}, ranker)

			got, err := service.GetPostDetail(context.Background(), postID)

			if tt.wantErr {
				if err == nil {
					t.Fatal("GetPostDetail() error = nil, want error")
				}
				var appErr *response.AppError
				if errors.As(err, &appErr) && appErr.Code != tt.wantErrCode {
					t.Errorf("GetPostDetail() error code = %v, want %v", appErr.Code, tt.wantErrCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetPostDetail() unexpected error = %v", err)
			}
			if got.ViewCount != tt.wantViewCount {
				t.Errorf("GetPostDetail() ViewCount = %d, want %d", got.ViewCount, tt.wantViewCount)
			}
			if !bumped {
				t.Error("GetPostDetail() did not report the view to the ranker")
			}
		})
	}
}

func TestPostService_GetPostForEdit(t *testing.T) {
	postID := uuid.New()
	incremented := false

	mockPostRepo := &MockPostRepository{
		FindActiveByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
			post := &domain.Post{
				Status: domain.StatusActive,
				Author: domain.Member{Email: "owner@example.com"},
			}
			post.ID = postID
			return post, nil
		},
		IncrementViewCountFunc: func(ctx context.Context, id uuid.UUID) error {
			incremented = true
			return nil
		},
	}
	service := newPostService(t, mockPostRepo, &MockCommentRepository{}, &MockAttachmentRepository{}, &MockMemberRepository{}, nil)

	t.Run("성공: 작성자 본인 조회, 조회수 미증가", func(t *testing.T) {
		_, err := service.GetPostForEdit(context.Background(), postID, "owner@example.com")
		if err != nil {
			t.Fatalf("GetPostForEdit() unexpected error = %v", err)
		}
		if incremented {
			t.Error("GetPostForEdit() incremented the view count")
		}
	})

	t.Run("실패: 작성자가 아닌 회원", func(t *testing.T) {
		_, err := service.GetPostForEdit(context.Background(), postID, "other@example.com")
		var appErr *response.AppError
		if !errors.As(err, &appErr) || appErr.Code != response.ErrCodeForbidden {
			t.Errorf("GetPostForEdit() error = %v, want FORBIDDEN", err)
		}
	})

	t.Run("실패: 대소문자가 다른 이메일", func(t *testing.T) {
		_, err := service.GetPostForEdit(context.Background(), postID, "Owner@example.com")
		var appErr *response.AppError
		if !errors.As(err, &appErr) || appErr.Code != response.ErrCodeForbidden {
			t.Errorf("GetPostForEdit() error = %v, want FORBIDDEN", err)
		}
	})
}

func TestPostService_UpdatePost(t *testing.T) {
	postID := uuid.New()
	keepFileID := uuid.New()
	dropFileID := uuid.New()

	newOwnedPost := func() *domain.Post {
		post := &domain.Post{
			Title:   "Old Title",
			Content: "Old Content",
			Status:  domain.StatusActive,
			Author:  domain.Member{Email: "owner@example.com", Name: "Owner"},
		}
		post.ID = postID
		return post
	}

	t.Run("성공: 제목 변경과 첨부파일 삭제", func(t *testing.T) {
		deletedIDs := []uuid.UUID{}
		mockPostRepo := &MockPostRepository{
			FindActiveByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
				return newOwnedPost(), nil
			},
		}
		mockAttachmentRepo := &MockAttachmentRepository{
			FindByPostIDFunc: func(ctx context.Context, pid uuid.UUID) ([]*domain.Attachment, error) {
				keep := &domain.Attachment{PostID: postID, StoredName: "keep.pdf", FilePath: "posts/2026-08-31/"}
				keep.ID = keepFileID
				drop := &domain.Attachment{PostID: postID, StoredName: "drop.pdf", FilePath: "posts/2026-08-31/"}
				drop.ID = dropFileID
				return []*domain.Attachment{keep, drop}, nil
			},
			DeleteFunc: func(ctx context.Context, id uuid.UUID) error {
				deletedIDs = append(deletedIDs, id)
				return nil
			},
		}
		service := newPostService(t, mockPostRepo, &MockCommentRepository{}, mockAttachmentRepo, &MockMemberRepository{}, nil)

		newTitle := "New Title"
		got, err := service.UpdatePost(context.Background(), postID, "owner@example.com", &dto.UpdatePostRequest{
			Title:         &newTitle,
			DeleteFileIDs: []string{dropFileID.String()},
		}, nil)
		if err != nil {
			t.Fatalf("UpdatePost() unexpected error = %v", err)
		}
		if got.Title != newTitle {
			t.Errorf("UpdatePost() Title = %v, want %v", got.Title, newTitle)
		}
		if len(deletedIDs) != 1 || deletedIDs[0] != dropFileID {
			t.Errorf("UpdatePost() deleted attachment ids = %v, want [%v]", deletedIDs, dropFileID)
		}
	})

	t.Run("성공: 게시글에 속하지 않는 파일 ID는 무시", func(t *testing.T) {
		deleted := 0
		mockPostRepo := &MockPostRepository{
			FindActiveByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
				return newOwnedPost(), nil
			},
		}
		mockAttachmentRepo := &MockAttachmentRepository{
			FindByPostIDFunc: func(ctx context.Context, pid uuid.UUID) ([]*domain.Attachment, error) {
				return []*domain.Attachment{}, nil
			},
			DeleteFunc: func(ctx context.Context, id uuid.UUID) error {
				deleted++
				return nil
			},
		}
		service := newPostService(t, mockPostRepo, &MockCommentRepository{}, mockAttachmentRepo, &MockMemberRepository{}, nil)

		_, err := service.UpdatePost(context.Background(), postID, "owner@example.com", &dto.UpdatePostRequest{
			DeleteFileIDs: []string{uuid.New().String(), "not-a-uuid"},
		}, nil)
		if err != nil {
			t.Fatalf("UpdatePost() unexpected error = %v", err)
		}
		if deleted != 0 {
			t.Errorf("UpdatePost() deleted %d attachments, want 0", deleted)
		}
	})

	t.Run("실패: 작성자가 아닌 회원", func(t *testing.T) {
		mockPostRepo := &MockPostRepository{
			FindActiveByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
				return newOwnedPost(), nil
			},
		}
		service := newPostService(t, mockPostRepo, &MockCommentRepository{}, &MockAttachmentRepository{}, &MockMemberRepository{}, nil)

		_, err := service.UpdatePost(context.Background(), postID, "other@example.com", &dto.UpdatePostRequest{}, nil)
		var appErr *response.AppError
		if !errors.As(err, &appErr) || appErr.Code != response.ErrCodeForbidden {
			t.Errorf("UpdatePost() error = %v, want FORBIDDEN", err)
		}
	})
}

func TestPostService_DeletePost(t *testing.T) {
	postID := uuid.New()

	t.Run("성공: 소프트 삭제 후 랭킹에서 제거", func(t *testing.T) {
		var savedStatus domain.ContentStatus
		removed := false
		mockPostRepo := &MockPostRepository{
			FindActiveByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
				post := &domain.Post{
					Status: domain.StatusActive,
					Author: domain.Member{Email: "owner@example.com"},
				}
				post.ID = postID
				return post, nil
			},
			SaveFunc: func(ctx context.Context, post *domain.Post) error {
				savedStatus = post.Status
				return nil
			},
		}
		ranker := &MockViewRanker{
			RemoveFunc: func(ctx context.Context, id uuid.UUID) { removed = true },
		}
		service := newPostService(t, mockPostRepo, &MockCommentRepository{}, &MockAttachmentRepository{}, &MockMemberRepository{}, ranker)

		if err := service.DeletePost(context.Background(), postID, "owner@example.com"); err != nil {
			t.Fatalf("DeletePost() unexpected error = %v", err)
		}
		if savedStatus != domain.StatusDeleted {
			t.Errorf("DeletePost() saved status = %v, want %v", savedStatus, domain.StatusDeleted)
		}
		if !removed {
			t.Error("DeletePost() did not remove the post from the ranking")
		}
	})

	t.Run("실패: 이미 삭제된 게시글은 NOT_FOUND", func(t *testing.T) {
		mockPostRepo := &MockPostRepository{
			FindActiveByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		service := newPostService(t, mockPostRepo, &MockCommentRepository{}, &MockAttachmentRepository{}, &MockMemberRepository{}, nil)

		err := service.DeletePost(context.Background(), postID, "owner@example.com")
		var appErr *response.AppError
		if !errors.As(err, &appErr) || appErr.Code != response.ErrCodeNotFound {
			t.Errorf("DeletePost() error = %v, want NOT_FOUND", err)
		}
	})

	t.Run("실패: 작성자가 아닌 회원", func(t *testing.T) {
		mockPostRepo := &MockPostRepository{
			FindActiveByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
				post := &domain.Post{
					Status: domain.StatusActive,
					Author: domain.Member{Email: "owner@example.com"},
				}
				post.ID = postID
				return post, nil
			},
		}
		service := newPostService(t, mockPostRepo, &MockCommentRepository{}, &MockAttachmentRepository{}, &MockMemberRepository{}, nil)

		err := service.DeletePost(context.Background(), postID, "other@example.com")
		var appErr *response.AppError
		if !errors.As(err, &appErr) || appErr.Code != response.ErrCodeForbidden {
			t.Errorf("DeletePost() error = %v, want FORBIDDEN", err)
		}
	})
}

func TestPostService_ListPosts(t *testing.T) {
	t.Run("성공: 페이지 윈도우 계산", func(t *testing.T) {
		mockPostRepo := &MockPostRepository{
			FindActivePagedFunc: func(ctx context.Context, offset, limit int) ([]*domain.Post, int64, error) {
				if offset != 0 || limit != 10 {
					t.Errorf("FindActivePaged(offset=%d, limit=%d), want (0, 10)", offset, limit)
				}
				return []*domain.Post{}, 95, nil
			},
		}
		service := newPostService(t, mockPostRepo, &MockCommentRepository{}, &MockAttachmentRepository{}, &MockMemberRepository{}, nil)

		got, err := service.ListPosts(context.Background(), 1, 10)
		if err != nil {
			t.Fatalf("ListPosts() unexpected error = %v", err)
		}
		if got.Window.TotalPages != 10 {
			t.Errorf("ListPosts() TotalPages = %d, want 10", got.Window.TotalPages)
		}
		if got.Window.StartPage != 1 || got.Window.EndPage != 10 {
			t.Errorf("ListPosts() window = [%d, %d], want [1, 10]", got.Window.StartPage, got.Window.EndPage)
		}
		if got.Window.HasNextGroup {
			t.Error("ListPosts() HasNextGroup = true, want false")
		}
	})

	t.Run("실패: 페이지 크기가 0 이하", func(t *testing.T) {
		service := newPostService(t, &MockPostRepository{}, &MockCommentRepository{}, &MockAttachmentRepository{}, &MockMemberRepository{}, nil)

		_, err := service.ListPosts(context.Background(), 1, 0)
		var appErr *response.AppError
		if !errors.As(err, &appErr) || appErr.Code != response.ErrCodeValidation {
			t.Errorf("ListPosts() error = %v, want VALIDATION_ERROR", err)
		}
	})
}

func TestPostService_ListPopularPosts(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	deleted := uuid.New()

	ranker := &MockViewRanker{
		TopNFunc: func(ctx context.Context, n int) ([]uuid.UUID, error) {
			return []uuid.UUID{first, deleted, second}, nil
		},
	}
	mockPostRepo := &MockPostRepository{
		FindActiveByIDsFunc: func(ctx context.Context, ids []uuid.UUID) ([]*domain.Post, error) {
			// Returned in arbitrary order; the deleted id is absent
			a := &domain.Post{Title: "second", Status: domain.StatusActive}
			a.ID = second
			b := &domain.Post{Title: "first", Status: domain.StatusActive}
			b.ID = first
			return []*domain.Post{a, b}, nil
		},
	}
	service := newPostService(t, mockPostRepo, &MockCommentRepository{}, &MockAttachmentRepository{}, &MockMemberRepository{}, ranker)

	got, err := service.ListPopularPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPopularPosts() unexpected error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListPopularPosts() returned %d posts, want 2", len(got))
	}
	if got[0].ID != first || got[1].ID != second {
		t.Errorf("ListPopularPosts() order = [%v, %v], want ranking order", got[0].ID, got[1].ID)
	}
}
