package token

import "testing"

func TestCookieRoundTrip(t *testing.T) {
	GenerateSecretKey()

	payload := SessionPayload{UserID: "agent01", Day: "2025-06-15"}
	cookie, err := EncodeCookie(payload)
	if err != nil {
		t.Fatalf("EncodeCookie 失败: %v", err)
	}

	decoded, err := DecodeCookie(cookie)
	if err != nil {
		t.Fatalf("DecodeCookie 失败: %v", err)
	}
	if decoded != payload {
		t.Errorf("往返结果不一致: %+v != %+v", decoded, payload)
	}
}

func TestTamperedCookieRejected(t *testing.T) {
	GenerateSecretKey()

	cookie, err := EncodeCookie(SessionPayload{UserID: "agent01", Day: "2025-06-15"})
	if err != nil {
		t.Fatalf("EncodeCookie 失败: %v", err)
	}

	// 篡改payload的任意一个字节后签名必须失效
	tampered := "x" + cookie[1:]
	if _, err := DecodeCookie(tampered); err == nil {
		t.Error("被篡改的Cookie不应通过验证")
	}

	if _, err := DecodeCookie("not-a-cookie"); err == nil {
		t.Error("格式错误的Cookie不应通过验证")
	}
}
