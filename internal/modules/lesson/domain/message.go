package domain

import (
	"fmt"
	"time"
)

type Speaker string

const (
	SpeakerAI   Speaker = "ai"
	SpeakerUser Speaker = "user"
)

type ChatMessage struct {
	ID        string
	Role      Speaker
	Content   string
	Timestamp time.Time
	Topic     string
	FollowUps []string
}

func WelcomeText(title string, markers int) string {
	return fmt.Sprintf("👋 同学你好！今天我们来学习「%s」\n\n这节课有 %d 个重点知识点，我会在合适的时候暂停视频帮你讲解。\n\n准备好了就开始播放吧！🎬", title, markers)
}

func WelcomeBackText(title string, percent, done, total int) string {
	return fmt.Sprintf("👋 欢迎回来！继续学习「%s」\n\n你已完成了 %d%% 的知识点（%d/%d），继续加油！🎯", title, percent, done, total)
}

func ResetText(title string, markers int) string {
	return fmt.Sprintf("🔄 学习进度已重置\n\n让我们重新开始学习「%s」！\n\n这节课有 %d 个重点知识点，准备好了就开始播放吧！🎬", title, markers)
}

// MarkerText is the message shown when the video pauses at a marker.
func MarkerText(title, description, teaching string) string {
	if teaching != "" {
		return teaching
	}
	return fmt.Sprintf("📌 这里有一个知识点：**%s**\n\n%s", title, description)
}

func ContinueText(last bool) string {
	if last {
		return "🎊 恭喜！你已经完成了本节课所有知识点的学习！\n\n接下来可以进入「文章精读」阶段，巩固所学知识。"
	}
	return "📚 让我们继续观看视频，下一个知识点马上到来..."
}

func SkipText(title string) string {
	return fmt.Sprintf("⏭ 好的，已跳过「%s」。\n\n之后想复习的话，可以从进度条上的知识点标记跳回来。", title)
}

func AnchorPromptText(content, prompt string) string {
	if prompt != "" {
		return prompt
	}
	return fmt.Sprintf("关于“%s”，你有什么想问的吗？", content)
}

func ArticleIntroText(content, prompt string) string {
	return "📖 进入文章精读模式！\n\n我来带你读这篇文章，先看第一个重点——\n\n" + AnchorPromptText(content, prompt)
}

func ReviewText(content, translation string) string {
	return fmt.Sprintf("🔄 来复习一下「%s」\n\n%s\n\n你能用自己的话解释一下这个概念吗？", content, translation)
}

// QuestionContext frames an anchor's description with its question.
func QuestionContext(stem, reference, description string) string {
	s := "【题目背景】\n题干：" + stem + "\n"
	if reference != "" {
		s += "参考答案：" + reference + "\n"
	}
	return s + "\n【选项/原文解析】\n" + description
}
