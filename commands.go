package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sort"
	"strings"
	"time"

	"linkedin-publisher/domain/model"
	"linkedin-publisher/infrastructure/configuration"
	"linkedin-publisher/infrastructure/utils"
	"linkedin-publisher/usecase"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
)

const textStartChars = 120

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...interface{}) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"setup":            {"authorize with LinkedIn and store the credential", runSetup},
	"check-auth":       {"report whether a usable credential is stored", runCheckAuth},
	"post-text":        {"publish a text post", runPostText},
	"post-image":       {"publish a post with one image", runPostImage},
	"post-multi-image": {"publish a post with 2-20 images", runPostMultiImage},
	"post-article":     {"publish a link share", runPostArticle},
	"upload-image":     {"upload an image and print its URN", runUploadImage},
	"get-post":         {"read back a post's commentary", runGetPost},
	"list-comments":    {"list comments on a post", runListComments},
	"create-comment":   {"comment on a post", runCreateComment},
	"reply-comment":    {"reply to a comment", runReplyComment},
	"history":          {"list recently published posts", runHistory},
	"serve":            {"run the local bridge API", runServe},
	"api-token":        {"mint a bearer token for the bridge API", runAPIToken},
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: linkedin-publisher <command> [flags]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-18s %s\n", name, commands[name].summary)
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return usagef("help requested")
		}
		return usagef("%v", err)
	}
	return nil
}

type textFlags struct {
	text       string
	textFile   string
	visibility string
	preview    bool
}

func (t *textFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&t.text, "text", "", "post text")
	fs.StringVar(&t.textFile, "text-file", "", "read post text from a file")
	fs.StringVar(&t.visibility, "visibility", string(model.VisibilityPublic), "PUBLIC or CONNECTIONS")
	fs.BoolVar(&t.preview, "preview", false, "upload media and stop before publishing")
}

func (t *textFlags) resolve() (string, error) {
	if t.text != "" && t.textFile != "" {
		return "", usagef("--text and --text-file are mutually exclusive")
	}
	if t.textFile != "" {
		data, err := os.ReadFile(t.textFile)
		if err != nil {
			return "", fmt.Errorf("reading text file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if t.text == "" {
		return "", usagef("one of --text or --text-file is required")
	}
	return t.text, nil
}

func (t *textFlags) request(variant model.PostVariant) (model.PostRequest, error) {
	text, err := t.resolve()
	if err != nil {
		return model.PostRequest{}, err
	}
	return model.PostRequest{
		Variant:    variant,
		Text:       text,
		Visibility: model.Visibility(t.visibility),
		Preview:    t.preview,
	}, nil
}

// setupFlags keeps configured credentials out of the flag defaults, which
// pflag prints in its usage text.
type setupFlags struct {
	clientID     string
	clientSecret string
}

func (s *setupFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&s.clientID, "client-id", "", "LinkedIn app client id (falls back to linkedin.clientId / LINKEDIN_CLIENT_ID)")
	fs.StringVar(&s.clientSecret, "client-secret", "", "LinkedIn app client secret (falls back to linkedin.clientSecret / LINKEDIN_CLIENT_SECRET)")
}

func (s *setupFlags) resolve(li *configuration.LinkedInConfig) (string, string) {
	id, secret := s.clientID, s.clientSecret
	if id == "" {
		id = li.ClientID
	}
	if secret == "" {
		secret = li.ClientSecret
	}
	return id, secret
}

func runSetup(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("setup")
	var sf setupFlags
	sf.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	clientID, clientSecret := sf.resolve(a.li)

	fmt.Fprintf(os.Stderr, "Waiting up to %s for the browser callback on %s\n", a.li.CallbackTimeout, a.li.RedirectURI())
	cred, err := a.authUsecase().Authorize(ctx, clientID, clientSecret)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "SUCCESS=true")
	fmt.Fprintf(a.out, "NAME=%s\n", cred.DisplayName)
	fmt.Fprintf(a.out, "PERSON_URN=%s\n", cred.PersonURN)
	fmt.Fprintf(a.out, "EXPIRES_AT=%s\n", cred.ExpiresAt.Format("2006-01-02"))
	fmt.Fprintf(a.out, "CREDENTIALS_PATH=%s\n", a.credentials.Path())
	return nil
}

func runCheckAuth(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("check-auth")
	verify := fs.Bool("verify", false, "re-fetch the identity to confirm the token still works")
	if err := parse(fs, args); err != nil {
		return err
	}

	st, err := a.statusUsecase().Check(ctx, *verify)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "STATUS=%s\n", st.State)
	fmt.Fprintf(a.out, "SUMMARY=%s\n", st.Summary())
	if st.PersonURN != "" {
		fmt.Fprintf(a.out, "PERSON_URN=%s\n", st.PersonURN)
		fmt.Fprintf(a.out, "NAME=%s\n", st.DisplayName)
	}
	if st.ExpiresAt != nil {
		fmt.Fprintf(a.out, "EXPIRES_AT=%s\n", st.ExpiresAt.Format("2006-01-02"))
		fmt.Fprintf(a.out, "EXPIRES=%s\n", humanize.Time(*st.ExpiresAt))
		fmt.Fprintf(a.out, "DAYS_REMAINING=%d\n", st.DaysRemaining)
	}
	if st.IdentityVerified != nil {
		fmt.Fprintf(a.out, "IDENTITY_VERIFIED=%t\n", *st.IdentityVerified)
	}
	if st.IdentityError != "" {
		fmt.Fprintf(a.out, "IDENTITY_ERROR=%s\n", st.IdentityError)
	}
	if st.State != model.AuthStateValid {
		return errors.New(st.Summary())
	}
	return nil
}

func runPostText(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("post-text")
	var tf textFlags
	tf.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	req, err := tf.request(model.PostVariantText)
	if err != nil {
		return err
	}
	return a.publish(ctx, req)
}

func runPostImage(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("post-image")
	var tf textFlags
	tf.register(fs)
	image := fs.String("image", "", "image file to attach")
	title := fs.String("title", "", "image title")
	altText := fs.String("alt-text", "", "image alt text")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *image == "" {
		return usagef("--image is required")
	}
	req, err := tf.request(model.PostVariantImage)
	if err != nil {
		return err
	}
	req.Images = []model.ImageInput{{Path: *image, AltText: *altText}}
	req.ImageTitle = *title
	return a.publish(ctx, req)
}

func runPostMultiImage(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("post-multi-image")
	var tf textFlags
	tf.register(fs)
	images := fs.StringSlice("images", nil, "comma-separated image files (2-20)")
	altTexts := fs.StringSlice("alt-texts", nil, "comma-separated alt texts, matched to --images by position")
	if err := parse(fs, args); err != nil {
		return err
	}
	if len(*altTexts) > len(*images) {
		return usagef("got %d alt texts for %d images", len(*altTexts), len(*images))
	}
	req, err := tf.request(model.PostVariantMultiImage)
	if err != nil {
		return err
	}
	for i, path := range *images {
		in := model.ImageInput{Path: path}
		if i < len(*altTexts) {
			in.AltText = (*altTexts)[i]
		}
		req.Images = append(req.Images, in)
	}
	return a.publish(ctx, req)
}

func runPostArticle(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("post-article")
	var tf textFlags
	tf.register(fs)
	link := fs.String("url", "", "article url")
	title := fs.String("title", "", "article title")
	description := fs.String("description", "", "article description")
	thumbnail := fs.String("thumbnail", "", "thumbnail image file")
	if err := parse(fs, args); err != nil {
		return err
	}
	req, err := tf.request(model.PostVariantArticle)
	if err != nil {
		return err
	}
	req.Article = &model.ArticleLink{
		URL:           *link,
		Title:         *title,
		Description:   *description,
		ThumbnailPath: *thumbnail,
	}
	return a.publish(ctx, req)
}

func (a *app) publish(ctx context.Context, req model.PostRequest) error {
	history := a.history()
	res, err := a.publishUsecase(history).Publish(ctx, req)
	if err != nil {
		return err
	}
	writePublishResult(a.out, req.Text, res)
	return nil
}

func writePublishResult(w io.Writer, text string, res *model.PublishResult) {
	if res.LengthWarn != nil {
		fmt.Fprintf(w, "WARNING=%s\n", res.LengthWarn.Error())
		fmt.Fprintln(w, "RECOMMEND=run with --preview and publish through the web composer")
	}
	for i, asset := range res.Assets {
		fmt.Fprintf(w, "IMAGE_URN_%d=%s\n", i+1, asset.URN)
	}
	if res.Thumbnail != nil {
		fmt.Fprintf(w, "THUMBNAIL_URN=%s\n", res.Thumbnail.URN)
	}

	if res.Preview {
		fmt.Fprintln(w, "SUCCESS=true")
		fmt.Fprintln(w, "PREVIEW=true")
		fmt.Fprintf(w, "TEXT_LENGTH=%d\n", res.TextLength)
		fmt.Fprintf(w, "TEXT_START=%s\n", oneLine(model.Head(text, textStartChars)))
		fmt.Fprintf(w, "COMPOSE_URL=%s\n", model.ComposeURL)
		return
	}

	fmt.Fprintln(w, "SUCCESS=true")
	fmt.Fprintf(w, "POST_ID=%s\n", res.PostURN)
	fmt.Fprintf(w, "TEXT_LENGTH=%d\n", res.TextLength)
	if v := res.Verified; v != nil {
		writeVerification(w, *v)
	}
}

func writeVerification(w io.Writer, v model.VerificationResult) {
	fmt.Fprintf(w, "VERIFIED=%s\n", v.Outcome)
	switch v.Outcome {
	case model.VerificationTruncated:
		fmt.Fprintf(w, "SENT_LENGTH=%d\n", v.SentLength)
		fmt.Fprintf(w, "STORED_LENGTH=%d\n", v.StoredLength)
		fmt.Fprintf(w, "STORED_PERCENT=%d\n", v.StoredPercent())
		fmt.Fprintf(w, "TRUNCATED_AT=%s\n", oneLine(v.StoredTail))
		fmt.Fprintln(w, "HINT=edit the post in the LinkedIn web UI; partial updates through the API are unreliable")
	case model.VerificationUnavailable:
		fmt.Fprintf(w, "VERIFY_REASON=%s\n", v.Reason)
	}
}

func runUploadImage(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("upload-image")
	image := fs.String("image", "", "image file to upload")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *image == "" {
		return usagef("--image is required")
	}
	asset, err := a.publishUsecase(nil).UploadImage(ctx, *image)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "SUCCESS=true")
	fmt.Fprintf(a.out, "IMAGE_URN=%s\n", asset.URN)
	return nil
}

func runGetPost(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("get-post")
	postURN := fs.String("post-urn", "", "post URN")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *postURN == "" {
		return usagef("--post-urn is required")
	}
	post, err := a.publishUsecase(nil).GetPost(ctx, *postURN)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "SUCCESS=true")
	fmt.Fprintf(a.out, "POST_ID=%s\n", *postURN)
	fmt.Fprintf(a.out, "AUTHOR=%s\n", post.Author)
	fmt.Fprintf(a.out, "VISIBILITY=%s\n", post.Visibility)
	fmt.Fprintf(a.out, "TEXT_LENGTH=%d\n", len([]rune(post.Commentary)))
	fmt.Fprintf(a.out, "TEXT_START=%s\n", oneLine(model.Head(post.Commentary, textStartChars)))
	fmt.Fprintf(a.out, "TEXT_END=%s\n", oneLine(model.Tail(post.Commentary, 80)))
	return nil
}

func runListComments(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("list-comments")
	postURN := fs.String("post-urn", "", "post URN")
	start := fs.Int("start", 0, "offset of the first comment")
	count := fs.Int("count", usecase.DefaultCommentPageSize, "page size")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *postURN == "" {
		return usagef("--post-urn is required")
	}
	page, err := a.commentUsecase().List(ctx, *postURN, *start, *count)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "SUCCESS=true")
	fmt.Fprintf(a.out, "COMMENT_COUNT=%d\n", len(page.Comments))
	for i, c := range page.Comments {
		n := i + 1
		fmt.Fprintf(a.out, "COMMENT_%d_URN=%s\n", n, c.URN)
		fmt.Fprintf(a.out, "COMMENT_%d_ID=%s\n", n, c.ID)
		fmt.Fprintf(a.out, "COMMENT_%d_ACTOR=%s\n", n, c.Actor)
		if !c.CreatedAt.IsZero() {
			fmt.Fprintf(a.out, "COMMENT_%d_CREATED=%s\n", n, c.CreatedAt.Format(time.RFC3339))
		}
		fmt.Fprintf(a.out, "COMMENT_%d_LIKES=%d\n", n, c.Likes)
		fmt.Fprintf(a.out, "COMMENT_%d_TEXT=%s\n", n, oneLine(c.Text))
	}
	return nil
}

func runCreateComment(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("create-comment")
	postURN := fs.String("post-urn", "", "post URN")
	text := fs.String("text", "", "comment text")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *postURN == "" {
		return usagef("--post-urn is required")
	}
	ref, err := a.commentUsecase().Create(ctx, *postURN, *text)
	if err != nil {
		return err
	}
	writeCommentRef(a.out, ref)
	return nil
}

func runReplyComment(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("reply-comment")
	postURN := fs.String("post-urn", "", "post URN")
	commentURN := fs.String("comment-urn", "", "URN of the comment to reply to")
	text := fs.String("text", "", "reply text")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *postURN == "" || *commentURN == "" {
		return usagef("--post-urn and --comment-urn are required")
	}
	ref, err := a.commentUsecase().Reply(ctx, *postURN, *commentURN, *text)
	if err != nil {
		return err
	}
	writeCommentRef(a.out, ref)
	return nil
}

func writeCommentRef(w io.Writer, ref *model.CommentRef) {
	fmt.Fprintln(w, "SUCCESS=true")
	fmt.Fprintf(w, "COMMENT_ID=%s\n", ref.ID)
	if ref.URN != "" {
		fmt.Fprintf(w, "COMMENT_URN=%s\n", ref.URN)
	}
}

func runHistory(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("history")
	limit := fs.Int("limit", 20, "number of records")
	if err := parse(fs, args); err != nil {
		return err
	}
	records, err := a.publishUsecase(a.history()).History(ctx, *limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "SUCCESS=true")
	fmt.Fprintf(a.out, "RECORD_COUNT=%d\n", len(records))
	for i, r := range records {
		n := i + 1
		fmt.Fprintf(a.out, "RECORD_%d_POST_ID=%s\n", n, r.PostURN)
		fmt.Fprintf(a.out, "RECORD_%d_VARIANT=%s\n", n, r.Variant)
		fmt.Fprintf(a.out, "RECORD_%d_VERIFIED=%s\n", n, r.Verification)
		fmt.Fprintf(a.out, "RECORD_%d_SENT_LENGTH=%d\n", n, r.SentLength)
		fmt.Fprintf(a.out, "RECORD_%d_PUBLISHED=%s\n", n, humanize.Time(r.CreatedAt))
	}
	return nil
}

func runServe(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("serve")
	host := fs.String("host", a.cfg.App.Host, "loopback address to bind")
	port := fs.Int("port", a.cfg.App.Port, "port to bind")
	if err := parse(fs, args); err != nil {
		return err
	}
	if !isLoopback(*host) {
		return usagef("--host must be a loopback address, got %q", *host)
	}
	return a.serve(ctx, *host, *port)
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func runAPIToken(_ context.Context, a *app, args []string) error {
	fs := newFlagSet("api-token")
	subject := fs.String("subject", "local", "token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := parse(fs, args); err != nil {
		return err
	}
	if a.cfg.App.SecretKey == "" {
		return errors.New("app.secretKey (or SECRET_KEY) must be set to mint bridge tokens")
	}
	token, err := utils.GenerateToken(*subject, *ttl, a.cfg.App.SecretKey)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "SUCCESS=true")
	fmt.Fprintf(a.out, "TOKEN=%s\n", token)
	fmt.Fprintf(a.out, "EXPIRES_AT=%s\n", time.Now().Add(*ttl).UTC().Format(time.RFC3339))
	return nil
}

func writeFailure(w io.Writer, err error) {
	fmt.Fprintln(w, "SUCCESS=false")
	fmt.Fprintf(w, "ERROR=%s\n", oneLine(err.Error()))
}

// oneLine keeps KEY=VALUE output parseable line by line.
func oneLine(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r", ""), "\n", "\\n")
}
