package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"zennovel/internal/api"
	"zennovel/internal/library"
)

func (s *Server) handleStatus(c *gin.Context) {
	if s.status == nil {
		c.JSON(http.StatusOK, Status{Running: true})
		return
	}
	c.JSON(http.StatusOK, s.status(c.Request.Context()))
}

func (s *Server) handleHome(c *gin.Context) {
	payload, err := s.novels.Home(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleGenres(c *gin.Context) {
	genres, err := s.novels.Genres(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}

func (s *Server) handleListNovels(c *gin.Context) {
	filter := library.NovelFilter{
		Query: strings.TrimSpace(c.Query("q")),
		Genre: strings.TrimSpace(c.Query("genre")),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	novels, err := s.novels.List(c.Request.Context(), filter)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"novels": novels})
}

func (s *Server) handleNovelDetail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := s.novels.Detail(c.Request.Context(), id, sessionKey(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) handleRateNovel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Score int `json:"score"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	average, err := s.novels.Rate(c.Request.Context(), sessionKey(c), id, body.Score)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"average_rating": average})
}

func (s *Server) handleChapterDetail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := s.chapters.Detail(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) handleNovelsByTag(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	novels, err := s.novels.ByTag(c.Request.Context(), slug)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": slug, "novels": novels})
}

func (s *Server) handleBookmarks(c *gin.Context) {
	bookmarks, err := s.engagement.Bookmarks(c.Request.Context(), sessionKey(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks})
}

func (s *Server) handleToggleBookmark(c *gin.Context) {
	novelID, ok := pathID(c, "novelID")
	if !ok {
		return
	}
	bookmarked, err := s.engagement.ToggleBookmark(c.Request.Context(), sessionKey(c), novelID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarked": bookmarked})
}

func (s *Server) handleUpdateProgress(c *gin.Context) {
	novelID, ok := pathID(c, "novelID")
	if !ok {
		return
	}
	chapterID, ok := pathID(c, "chapterID")
	if !ok {
		return
	}
	if err := s.engagement.UpdateProgress(c.Request.Context(), sessionKey(c), novelID, chapterID); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleHistory(c *gin.Context) {
	history, err := s.engagement.History(c.Request.Context(), sessionKey(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (s *Server) handleListComments(c *gin.Context) {
	chapterID, ok := pathID(c, "chapterID")
	if !ok {
		return
	}
	comments, err := s.engagement.Comments(c.Request.Context(), chapterID, sessionKey(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (s *Server) handleAddComment(c *gin.Context) {
	chapterID, ok := pathID(c, "chapterID")
	if !ok {
		return
	}
	var body struct {
		Author string `json:"author"`
		Body   string `json:"body"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	comment, err := s.engagement.AddComment(c.Request.Context(), sessionKey(c), chapterID, body.Author, body.Body)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) handleDeleteComment(c *gin.Context) {
	commentID, ok := pathID(c, "commentID")
	if !ok {
		return
	}
	if err := s.engagement.DeleteComment(c.Request.Context(), sessionKey(c), commentID); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleImportNovel(c *gin.Context) {
	source, err := c.FormFile("source")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing source file"})
		return
	}
	sourceFile, err := source.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable source file"})
		return
	}
	defer sourceFile.Close()

	req := api.ImportRequest{
		Title:            c.PostForm("title"),
		AlternativeTitle: c.PostForm("alternative_title"),
		Author:           c.PostForm("author"),
		Synopsis:         c.PostForm("synopsis"),
		Genre:            c.PostForm("genre"),
		Status:           c.PostForm("status"),
		SourceName:       source.Filename,
		Source:           sourceFile,
	}
	if raw := strings.TrimSpace(c.PostForm("tags")); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				req.Tags = append(req.Tags, tag)
			}
		}
	}
	if cover, err := c.FormFile("cover"); err == nil {
		coverFile, err := cover.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable cover file"})
			return
		}
		defer coverFile.Close()
		req.CoverName = cover.Filename
		req.Cover = coverFile
	}

	report, err := s.ingestSvc.Import(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (s *Server) handleReingestNovel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	report, err := s.ingestSvc.Reingest(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleDeleteNovel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.novels.Delete(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := api.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
