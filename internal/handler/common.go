package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vroo/hr-tracker/internal/model"
)

func paginationFromQuery(c *gin.Context) model.Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	p := model.Pagination{Page: page, PageSize: pageSize}
	p.Clamp()
	return p
}
