package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"call-recorder/internal/calls"
	"call-recorder/internal/events"
	"call-recorder/internal/telephony"
	"call-recorder/internal/users"
	"call-recorder/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Calls  *calls.Service
	Users  *users.Service
	Events *events.Service

	// ServicePhone is the inbound number advertised to the mobile app.
	ServicePhone string

	// Callback URL builders, parameterized with the call correlation id.
	RecordCompleteURL     func(callID string) string
	TranscribeCompleteURL func(callID string) string
}

// --- Provider webhooks ---

// Answer handles an inbound call: create the call record, then tell the
// provider to announce consent, pause, and record with transcription and
// both status callbacks pointing back at this service.
func (h Handlers) Answer(c *gin.Context) {
	body := parseBody(c)
	h.logWebhook(c, events.EventTypeAnswer, "", body.raw)

	call, err := h.Calls.Start(c.Request.Context(), body.String("From"))
	if err != nil {
		h.fail(c, err)
		return
	}

	doc, err := telephony.AnswerTwiML(telephony.AnswerParams{
		TranscribeCallbackURL:      h.TranscribeCompleteURL(call.ID),
		RecordingStatusCallbackURL: h.RecordCompleteURL(call.ID),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/xml; charset=utf-8", []byte(doc))
}

// RecordComplete ingests the recording status callback.
func (h Handlers) RecordComplete(c *gin.Context) {
	callID := c.Query("call-uuid")
	if callID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "call-uuid parameter is required"})
		return
	}
	body := parseBody(c)
	h.logWebhook(c, events.EventTypeRecordComplete, callID, body.raw)

	var duration *int
	if raw := body.String("RecordingDuration"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			duration = &n
		}
	}

	outcome, err := h.Calls.CompleteRecording(c.Request.Context(), callID, calls.RecordingEvent{
		Status:   body.String("RecordingStatus"),
		URL:      body.String("RecordingUrl"),
		SID:      body.String("RecordingSid"),
		Duration: duration,
	})
	if err != nil {
		if errors.Is(err, calls.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Call not found"})
			return
		}
		h.fail(c, err)
		return
	}

	switch outcome {
	case calls.RecordingIgnored:
		c.JSON(http.StatusOK, "Recording status not completed, ignoring.")
	case calls.RecordingDuplicate:
		c.JSON(http.StatusOK, "Recording already processed.")
	default:
		c.JSON(http.StatusOK, "Recording successfully completed.")
	}
}

// TranscribeComplete ingests the transcription callback.
func (h Handlers) TranscribeComplete(c *gin.Context) {
	callID := c.Query("call-uuid")
	if callID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "call-uuid parameter is required"})
		return
	}
	body := parseBody(c)
	h.logWebhook(c, events.EventTypeTranscribeComplete, callID, body.raw)

	_, err := h.Calls.CompleteTranscription(c.Request.Context(), callID,
		body.String("TranscriptionText"), body.String("TranscriptionStatus"))
	if err != nil {
		if errors.Is(err, calls.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Call not found"})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, "Transcribe was successfully saved.")
}

// --- Recordings API ---

// GetCallsForUser lists a user's calls, addressed by phone number or
// user id.
func (h Handlers) GetCallsForUser(c *gin.Context) {
	body := parseBody(c)
	phone := body.String("user_phone")
	userID := body.String("user_id")

	if phone == "" && userID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Either user_phone or user_id parameter is required"})
		return
	}
	if userID != "" {
		user, err := h.Users.Get(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			h.fail(c, err)
			return
		}
		phone = user.PhoneNumber
	}

	list, err := h.Calls.ListByPhone(c.Request.Context(), phone)
	if err != nil {
		h.fail(c, err)
		return
	}
	if list == nil {
		list = []calls.Call{}
	}
	c.JSON(http.StatusOK, list)
}

// DeleteRecording removes one call after an ownership check.
func (h Handlers) DeleteRecording(c *gin.Context) {
	body := parseBody(c)
	recordingID := body.String("recording_id")
	userID := body.String("user_id")

	if recordingID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "recording_id is required"})
		return
	}
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	user, err := h.Users.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.fail(c, err)
		return
	}

	if err := h.Calls.DeleteOwned(c.Request.Context(), recordingID, user.PhoneNumber); err != nil {
		switch {
		case errors.Is(err, calls.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Recording not found"})
		case errors.Is(err, calls.ErrNotOwner):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Unauthorized: You do not own this recording"})
		default:
			h.fail(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recording deleted successfully", "recording_id": recordingID})
}

// DeleteAllRecordings removes every call owned by the user.
func (h Handlers) DeleteAllRecordings(c *gin.Context) {
	body := parseBody(c)
	userID := body.String("user_id")
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	user, err := h.Users.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.fail(c, err)
		return
	}

	n, err := h.Calls.DeleteByPhone(c.Request.Context(), user.PhoneNumber)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       fmt.Sprintf("Successfully deleted %d recordings", n),
		"deleted_count": n,
	})
}

// --- Users API ---

// RegisterUser upserts the user by phone number: 201 on first
// registration, 200 when an existing user's token is refreshed.
func (h Handlers) RegisterUser(c *gin.Context) {
	body := parseBody(c)
	phone := body.String("phoneNumber")
	fcmToken := body.String("fcmToken")

	if phone == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "phoneNumber is required"})
		return
	}
	if fcmToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "fcmToken is required"})
		return
	}

	user, created, err := h.Users.Register(c.Request.Context(), phone, body.String("countryCode"), fcmToken)
	if err != nil {
		h.fail(c, err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, gin.H{"userId": user.ID, "message": "User registered successfully"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": user.ID, "message": "User updated successfully"})
}

func (h Handlers) GetUser(c *gin.Context) {
	user, err := h.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) || errors.Is(err, users.ErrInvalidArgument) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.fail(c, err)
		return
	}

	countryCode := ""
	if user.CountryCode != nil {
		countryCode = *user.CountryCode
	}
	c.JSON(http.StatusOK, gin.H{
		"phoneNumber":          user.PhoneNumber,
		"countryCode":          countryCode,
		"notificationsEnabled": user.PushNotificationsEnabled,
	})
}

func (h Handlers) UpdateUserPhone(c *gin.Context) {
	body := parseBody(c)
	userID := body.String("userId")
	phone := body.String("phoneNumber")
	countryCode := body.String("countryCode")

	if userID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	if phone == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "phoneNumber is required"})
		return
	}
	if countryCode == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "countryCode is required"})
		return
	}

	if err := h.Users.UpdatePhone(c.Request.Context(), userID, phone, countryCode); err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, users.ErrPhoneTaken):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Phone number already in use"})
		default:
			h.fail(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Phone number updated successfully", "userId": userID})
}

func (h Handlers) UpdateNotificationSettings(c *gin.Context) {
	body := parseBody(c)
	userID := body.String("userId")
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	enabled, ok := body.Bool("pushNotificationsEnabled")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "pushNotificationsEnabled is required"})
		return
	}

	if err := h.Users.SetNotificationsEnabled(c.Request.Context(), userID, enabled); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId":                   userID,
		"pushNotificationsEnabled": enabled,
		"message":                  "Notification settings updated successfully",
	})
}

// GetServicePhone returns the inbound number users dial to record.
func (h Handlers) GetServicePhone(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"phoneNumber": h.ServicePhone})
}

// --- Helpers ---

// logWebhook appends to the delivery log; failures never affect the
// webhook response.
func (h Handlers) logWebhook(c *gin.Context, typ events.EventType, callID, payload string) {
	if h.Events == nil {
		return
	}
	err := h.Events.LogWebhook(c.Request.Context(), typ, callID, c.ClientIP(), payload)
	if err != nil {
		logger.FromGin(c).Warn("webhook event log failed", "type", typ, "err", err)
	}
}

func (h Handlers) fail(c *gin.Context, err error) {
	if errors.Is(err, calls.ErrInvalidArgument) || errors.Is(err, users.ErrInvalidArgument) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logger.FromGin(c).Error("request failed", "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
