package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterContactRoutes contacts, opt-out toggle and CSV upload.
func (rt *Router) RegisterContactRoutes(rg *gin.RouterGroup) {
	contactGroup := rg.Group("/contacts")
	{
		contactGroup.GET("", rt.handlers.Contact.List)
		contactGroup.PATCH("/:id/opt-out", rt.handlers.Contact.ToggleOptOut)
		contactGroup.POST("/upload", rt.handlers.Contact.Upload)
	}
}

// RegisterContactListRoutes contact lists.
func (rt *Router) RegisterContactListRoutes(rg *gin.RouterGroup) {
	listGroup := rg.Group("/contact-lists")
	{
		listGroup.GET("", rt.handlers.ContactList.List)
		listGroup.POST("", rt.handlers.ContactList.Create)
	}
}
