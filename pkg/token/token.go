package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// secretKey 是服务器启动时生成的32字节HMAC密钥。
// 密钥不持久化：重启后所有旧的会话Cookie自动失效，客户端需要重新登录，
// 这正好触发一次正常的会话恢复流程。
var secretKey []byte

// SessionPayload 定义了会话Cookie中被签名的数据。
// 真正的身份认证由外部身份系统负责，这里只保证Cookie未被篡改。
type SessionPayload struct {
	UserID string `json:"u"`
	Day    string `json:"d"`
}

// GenerateSecretKey 生成一个密码学安全的32字节随机密钥。
func GenerateSecretKey() {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	if err != nil {
		panic("无法生成安全的密钥: " + err.Error())
	}
	secretKey = key
	fmt.Println("会话HMAC密钥已成功生成。")
}

// GenerateSessionSignature 为给定的SessionPayload生成HMAC-SHA256签名。
// 返回签名的Base64编码字符串。
func GenerateSessionSignature(payload SessionPayload) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", errors.New("无法序列化会话payload")
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	signature := mac.Sum(nil)

	return base64.RawURLEncoding.EncodeToString(signature), nil
}

// ValidateSessionSignature 验证payload和签名是否匹配。
func ValidateSessionSignature(payload SessionPayload, signatureB64 string) bool {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return false
	}

	expectedMAC := hmac.New(sha256.New, secretKey)
	expectedMAC.Write(payloadBytes)
	expectedSignature := expectedMAC.Sum(nil)

	signature, err := base64.RawURLEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}

	return hmac.Equal(signature, expectedSignature)
}

// EncodeCookie 将payload和它的签名编码为单个Cookie值。
func EncodeCookie(payload SessionPayload) (string, error) {
	sig, err := GenerateSessionSignature(payload)
	if err != nil {
		return "", err
	}
	payloadBytes, _ := json.Marshal(payload)
	return base64.RawURLEncoding.EncodeToString(payloadBytes) + "." + sig, nil
}

// DecodeCookie 解析并验证Cookie值，返回其中的payload。
func DecodeCookie(value string) (SessionPayload, error) {
	var payload SessionPayload

	dot := -1
	for i := len(value) - 1; i >= 0; i-- {
		if value[i] == '.' {
			dot = i
			break
		}
	}
	if dot <= 0 {
		return payload, errors.New("会话Cookie格式错误")
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(value[:dot])
	if err != nil {
		return payload, errors.New("会话Cookie payload解码失败")
	}
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return payload, errors.New("会话Cookie payload解析失败")
	}

	if !ValidateSessionSignature(payload, value[dot+1:]) {
		return SessionPayload{}, errors.New("会话Cookie签名无效")
	}
	return payload, nil
}
