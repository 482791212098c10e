package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/msafryx/carelum-backend/security"
)

type BotAskInput struct {
	Question string `json:"question" binding:"required"`
}

// PredictCry is a placeholder for the cry-detection model. The mobile
// client expects the endpoint to exist before the model ships.
func (ct *Controller) PredictCry(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"prediction": "unknown",
		"confidence": 0.0,
		"detail":     "cry detection model not deployed",
	})
}

// BotAsk is a placeholder for the parenting chatbot.
func (ct *Controller) BotAsk(c *gin.Context) {
	var input BotAskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"answer": "The assistant is not available yet. Please check back soon.",
	})
}

// BotUpdate is a placeholder for pushing new chatbot knowledge.
func (ct *Controller) BotUpdate(c *gin.Context) {
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
