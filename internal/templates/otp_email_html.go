package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

type OTPEmailData struct {
	Code          string
	ExpiryMinutes int
}

const otpHTML = `
<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8"/>
  <title>Password Reset Code</title>
  <style>
    body {
      margin: 0;
      padding: 0;
      font-family: Arial, sans-serif;
      background-color: #f5f5f5;
      color: #333;
    }
    .email-container {
      width: 100%;
      max-width: 600px;
      margin: 0 auto;
      background-color: #ffffff;
      border-radius: 6px;
      overflow: hidden;
      box-shadow: 0 2px 5px rgba(0,0,0,0.1);
    }
    .header {
      background-color: #1a3c6e;
      padding: 20px;
      text-align: center;
      color: #fff;
    }
    .header h1 {
      margin: 10px 0 0;
      font-size: 24px;
    }
    .content {
      padding: 20px;
      text-align: left;
    }
    .code-container {
      text-align: center;
      margin: 20px 0;
    }
    .otp-code {
      display: inline-block;
      padding: 12px 24px;
      background-color: #f0f4fa;
      color: #1a3c6e;
      border-radius: 4px;
      font-size: 32px;
      font-weight: bold;
      letter-spacing: 8px;
    }
    .footer {
      font-size: 12px;
      color: #999;
      text-align: center;
      padding: 10px 20px;
    }
  </style>
</head>
<body>
  <table class="email-container" role="presentation" cellspacing="0" cellpadding="0">
    <tr>
      <td>
        <!-- HEADER SECTION -->
        <div class="header">
          <h1>Survey Portal</h1>
        </div>

        <!-- BODY CONTENT -->
        <div class="content">
          <p>Hello,</p>

          <p>We received a request to reset the password for your account.
             Use the code below to continue:</p>

          <div class="code-container">
            <span class="otp-code">{{.Code}}</span>
          </div>

          <p>This code expires in {{.ExpiryMinutes}} minutes. If you did not
             request a password reset, you can ignore this email.</p>
        </div>

        <!-- FOOTER SECTION -->
        <div class="footer">
          <p>&copy; 2026 Nakhon Sawan Rajabhat University. All rights reserved.</p>
        </div>
      </td>
    </tr>
  </table>
</body>
</html>
`

func RenderOTPEmailHTML(data OTPEmailData) (string, error) {
	tmpl, err := template.New("otp").Parse(otpHTML)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderOTPEmailText is the plain-text fallback body.
func RenderOTPEmailText(data OTPEmailData) string {
	return fmt.Sprintf("Your Survey Portal password reset code is %s. It expires in %d minutes.", data.Code, data.ExpiryMinutes)
}
