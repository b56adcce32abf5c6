package utils

import (
	"bytes"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// contentRenderer 将 Markdown 转为 HTML，再按各自的白名单清洗
type contentRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func (r *contentRenderer) render(source string) string {
	if source == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		// 解析失败时退回纯文本
		return "<p>" + html.EscapeString(source) + "</p>"
	}
	return EnhanceHTMLContent(string(r.policy.SanitizeBytes(buf.Bytes())))
}

var (
	// 帖子正文：完整 GFM，允许图片和标题
	postRenderer = &contentRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithXHTML()),
		),
		policy: postPolicy(),
	}

	// 回复：只保留行内格式、列表、引用和代码
	replyRenderer = &contentRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithXHTML()),
		),
		policy: replyPolicy(),
	}
)

func postPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowImages()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	return p
}

// replyPolicy 不放行图片和标题，嵌套讨论里只留文字
func replyPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "del", "code", "pre", "blockquote", "ul", "ol", "li")
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.RequireParseableURLs(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	return p
}

// RenderMarkdown 渲染帖子正文
func RenderMarkdown(source string) string {
	return postRenderer.render(source)
}

// RenderReplyMarkdown 渲染回复内容，白名单比帖子更窄
func RenderReplyMarkdown(source string) string {
	return replyRenderer.render(source)
}
