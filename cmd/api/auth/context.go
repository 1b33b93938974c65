package auth

import "github.com/gin-gonic/gin"

const ctxKeyUserID = "user_id"

func SetUserID(c *gin.Context, userID string) {
	c.Set(ctxKeyUserID, userID)
}

// UserID 는 인증 미들웨어가 저장한 사용자 id 를 조회한다.
func UserID(c *gin.Context) string {
	return c.GetString(ctxKeyUserID)
}
